package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"
	"github.com/sunrise-apartments/portal/internal/core/service"
	"github.com/sunrise-apartments/portal/internal/pkg/metrics"
)

// SessionKey is the echo.Context key holding the domain.Session snapshot the
// guard evaluated.
const SessionKey = "session"

// GuardConfig configures Guard.
type GuardConfig struct {
	Session ports.SessionReader
	Policy  *domain.AccessPolicy
	// PreserveDestination appends ?next=<path> to login redirects.
	PreserveDestination bool
	// Skipper bypasses the guard entirely, e.g. for probes and metrics.
	Skipper func(c echo.Context) bool
}

// Guard enforces the access policy on every request path. The decision is
// recomputed per request from the current session snapshot.
func Guard(cfg GuardConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			session := cfg.Session.Current()
			destination := c.Request().URL.Path
			decision := service.Decide(session, cfg.Policy, destination)

			switch {
			case decision.State == domain.StatePending:
				metrics.RouteDecisionsTotal.WithLabelValues(string(decision.State), "pending").Inc()
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})

			case decision.RedirectTo != "":
				metrics.RouteDecisionsTotal.WithLabelValues(string(decision.State), "redirect").Inc()
				return c.Redirect(http.StatusFound, redirectTarget(decision, c.Request().URL, cfg.PreserveDestination))
			}

			metrics.RouteDecisionsTotal.WithLabelValues(string(decision.State), "render").Inc()
			c.Set(SessionKey, session)
			return next(c)
		}
	}
}

func redirectTarget(d domain.Decision, original *url.URL, preserve bool) string {
	if !preserve || d.RedirectTo != domain.LoginDestination {
		return d.RedirectTo
	}
	dest := original.Path
	if original.RawQuery != "" {
		dest += "?" + original.RawQuery
	}
	return d.RedirectTo + "?next=" + url.QueryEscape(dest)
}

// SkipPrefixes returns a Skipper matching any of the given path prefixes.
func SkipPrefixes(prefixes ...string) func(c echo.Context) bool {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, p := range prefixes {
			if path == p || strings.HasPrefix(path, strings.TrimRight(p, "/")+"/") {
				return true
			}
		}
		return false
	}
}
