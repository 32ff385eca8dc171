package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sunrise-apartments/portal/internal/api/handler"
	"github.com/sunrise-apartments/portal/internal/api/middleware"
	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"

	_ "github.com/sunrise-apartments/portal/docs"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	AuthService         ports.AuthService
	Session             ports.SessionReader
	Policy              *domain.AccessPolicy
	PreserveDestination bool
	// Ready lists the dependencies checked by /health/ready.
	Ready  map[string]handler.Pinger
	Logger zerolog.Logger
	// Registry receives the HTTP metrics; nil selects the default registry,
	// which also holds the portal's own metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if deps.Policy == nil {
		deps.Policy = domain.DefaultAccessPolicy()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: registerer,
	}))
	e.Use(middleware.Guard(middleware.GuardConfig{
		Session:             deps.Session,
		Policy:              deps.Policy,
		PreserveDestination: deps.PreserveDestination,
		Skipper:             middleware.SkipPrefixes("/health", "/metrics", "/swagger", "/session"),
	}))

	// --- Session (public) ---
	sessionHandler := handler.NewSessionHandler(deps.AuthService, deps.Session)
	e.GET("/session", sessionHandler.Current)
	e.POST("/session/login", sessionHandler.Login)
	e.POST("/session/logout", sessionHandler.Logout)
	e.POST("/session/forgot-password", sessionHandler.ForgotPassword)

	// --- Guarded actions; the destination path selects the policy rule ---
	profileHandler := handler.NewProfileHandler(deps.AuthService)
	e.POST("/profile/refresh", profileHandler.Refresh)
	e.PUT("/profile", profileHandler.Update)
	e.POST("/profile/password", profileHandler.ChangePassword)

	accountHandler := handler.NewAccountHandler(deps.AuthService)
	e.POST("/accounts", accountHandler.Create)

	quoteHandler := handler.NewQuoteHandler()
	e.POST("/contracts/quote", quoteHandler.Quote)

	// --- Screens ---
	pageHandler := handler.NewPageHandler(deps.Policy)
	for _, dest := range pageHandler.Destinations() {
		e.GET(dest, pageHandler.Show)
		if dest != "/" {
			e.GET(dest+"/*", pageHandler.Show)
		}
	}

	// --- Health probes, metrics and docs (unguarded) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
