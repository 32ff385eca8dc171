package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// CalculateProratedCharge computes the first invoice for a tenancy starting
// on startDate: the rent for the remaining days of that month (start day
// included) rounded to whole currency units, plus one full month of deposit.
//
// Only startDate's own year, month and day are read, so the result never
// depends on the wall clock or the date's time of day.
func CalculateProratedCharge(monthlyRent decimal.Decimal, startDate time.Time) (domain.ProratedCharge, error) {
	if monthlyRent.IsNegative() {
		return domain.ProratedCharge{}, fmt.Errorf("prorated charge: %w", domain.ErrInvalidRent)
	}

	year, month, day := startDate.Date()
	daysInMonth := DaysInMonth(year, month)
	daysRemaining := daysInMonth - day + 1

	// Multiply before dividing so whole-unit results stay exact.
	prorated := monthlyRent.
		Mul(decimal.NewFromInt(int64(daysRemaining))).
		Div(decimal.NewFromInt(int64(daysInMonth))).
		Round(0)
	deposit := monthlyRent

	return domain.ProratedCharge{
		MonthlyRent:   monthlyRent,
		StartDate:     time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		DaysInMonth:   daysInMonth,
		DaysRemaining: daysRemaining,
		ProratedRent:  prorated,
		Deposit:       deposit,
		Total:         prorated.Add(deposit),
	}, nil
}

// DaysInMonth returns the number of calendar days in month of year,
// accounting for leap years.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
