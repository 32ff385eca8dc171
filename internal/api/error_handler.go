package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps auth gateway errors and domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, validation, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		code := authStatus(ae)
		if code >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("path", c.Path()).Msg("auth api call failed")
		}
		return code, ae.UserMessage()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidRent):
		return http.StatusUnprocessableEntity, "monthly rent must not be negative"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not signed in"
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, "access denied"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func authStatus(ae *domain.AuthError) int {
	switch ae.Kind {
	case domain.ErrAuthenticationFailed, domain.ErrCredentialExpired:
		return http.StatusUnauthorized
	case domain.ErrMalformedResponse:
		return http.StatusBadGateway
	case domain.ErrUnreachable:
		return http.StatusServiceUnavailable
	default:
		if ae.Status >= 400 && ae.Status < 500 {
			return ae.Status
		}
		return http.StatusBadGateway
	}
}
