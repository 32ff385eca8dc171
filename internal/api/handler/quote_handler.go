package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/service"
	"github.com/sunrise-apartments/portal/internal/pkg/metrics"
)

// QuoteHandler computes the first invoice of a new contract.
type QuoteHandler struct{}

func NewQuoteHandler() *QuoteHandler {
	return &QuoteHandler{}
}

// Quote returns the pro-rated first month, deposit and total for a rent and
// start date.
//
// @Summary      Quote first invoice
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        body  body      quoteRequest  true  "Monthly rent and start date (YYYY-MM-DD)"
// @Success      200   {object}  quoteResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /contracts/quote [post]
func (h *QuoteHandler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "startdate must be a date (YYYY-MM-DD)")
	}

	charge, err := service.CalculateProratedCharge(*req.MonthlyRent, start)
	if err != nil {
		return err
	}

	price := "unknown"
	if charge.PriceConfigured() {
		price = "configured"
	}
	metrics.QuotesTotal.WithLabelValues(price).Inc()

	return c.JSON(http.StatusOK, toQuoteResponse(charge))
}
