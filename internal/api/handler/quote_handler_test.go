package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

func TestQuoteHandler_Quote(t *testing.T) {
	handler := NewQuoteHandler()

	c, rec := newContext(http.MethodPost, "/contracts/quote", `{"monthlyRent":3000000,"startDate":"2024-04-16"}`, nil)
	if err := handler.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["daysInMonth"] != float64(30) || resp["daysRemaining"] != float64(15) {
		t.Fatalf("unexpected days: %+v", resp)
	}
	if resp["proratedRent"] != "1500000" || resp["deposit"] != "3000000" || resp["total"] != "4500000" {
		t.Fatalf("unexpected amounts: %+v", resp)
	}
	if resp["startDate"] != "2024-04-16" || resp["priceConfigured"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestQuoteHandler_RentAsString(t *testing.T) {
	handler := NewQuoteHandler()

	c, rec := newContext(http.MethodPost, "/contracts/quote", `{"monthlyRent":"0","startDate":"2024-02-10"}`, nil)
	if err := handler.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["total"] != "0" || resp["priceConfigured"] != false {
		t.Fatalf("expected zero quote, got %+v", resp)
	}
}

func TestQuoteHandler_NegativeRent(t *testing.T) {
	handler := NewQuoteHandler()

	c, _ := newContext(http.MethodPost, "/contracts/quote", `{"monthlyRent":-1,"startDate":"2024-04-16"}`, nil)
	if err := handler.Quote(c); !errors.Is(err, domain.ErrInvalidRent) {
		t.Fatalf("expected ErrInvalidRent, got %v", err)
	}
}

func TestQuoteHandler_Validation(t *testing.T) {
	handler := NewQuoteHandler()

	cases := map[string]string{
		"missing rent": `{"startDate":"2024-04-16"}`,
		"bad date":     `{"monthlyRent":100,"startDate":"16/04/2024"}`,
		"missing date": `{"monthlyRent":100}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/contracts/quote", body, nil)
			if he, ok := handler.Quote(c).(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400")
			}
		})
	}
}
