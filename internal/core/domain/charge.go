package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProratedCharge is the first invoice of a new tenancy: the remainder of the
// start month plus a one-month deposit. It is never persisted by the portal.
type ProratedCharge struct {
	MonthlyRent   decimal.Decimal
	StartDate     time.Time
	DaysInMonth   int
	DaysRemaining int
	ProratedRent  decimal.Decimal
	Deposit       decimal.Decimal
	Total         decimal.Decimal
}

// PriceConfigured is false when the room type has no price, in which case the
// zero amounts must not be presented as a real charge.
func (c ProratedCharge) PriceConfigured() bool {
	return c.MonthlyRent.IsPositive()
}
