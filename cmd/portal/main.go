// @title        Sunrise Apartments Portal API
// @version      1.0
// @description  Session, access control and billing endpoints of the tenant portal.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sunrise-apartments/portal/internal/api"
	"github.com/sunrise-apartments/portal/internal/api/handler"
	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/service"
	"github.com/sunrise-apartments/portal/internal/infrastructure/apiclient"
	"github.com/sunrise-apartments/portal/internal/infrastructure/storage"
	"github.com/sunrise-apartments/portal/internal/pkg/config"
	"github.com/sunrise-apartments/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "portal",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, logger.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session storage")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("failed to close session storage")
		}
	}()

	sessions := service.NewSessionStore(store.Backend, logger.Component("session"))
	gateway := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, sessions, logger.Component("gateway"))

	policy := domain.DefaultAccessPolicy()
	authService := service.NewAuthService(gateway, sessions, policy, logger.Component("auth"))

	session := sessions.Initialize(ctx)
	log.Info().Bool("authenticated", session.Authenticated()).Str("role", string(session.Role())).Msg("session restored")

	e := api.NewRouter(api.Dependencies{
		AuthService:         authService,
		Session:             sessions,
		Policy:              policy,
		PreserveDestination: cfg.PreserveDestination,
		Ready: map[string]handler.Pinger{
			"storage":  store.Backend,
			"auth_api": gateway,
		},
		Logger: logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("api", gateway.BaseURL()).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
