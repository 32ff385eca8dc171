// Command devapi runs the in-memory auth API for local development. It
// seeds one account per role, all with the password "password".
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/infrastructure/devapi"
	"github.com/sunrise-apartments/portal/internal/pkg/config"
	"github.com/sunrise-apartments/portal/pkg/logger"
)

const seedPassword = "password"

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "devapi",
		Env:     cfg.Env,
	})

	if cfg.IsProduction() {
		log.Fatal().Msg("devapi must not run with ENV=production")
	}

	srv := devapi.New(devapi.Config{
		JWTSecret: cfg.DevAPI.JWTSecret,
		TokenTTL:  cfg.DevAPI.TokenTTL,
	}, logger.Component("devapi"))

	for _, role := range domain.Roles {
		email := string(role) + "@sunrise.local"
		if err := srv.Seed(email, seedPassword, role, ""); err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("failed to seed account")
		}
		log.Info().Str("email", email).Str("role", string(role)).Msg("seeded account")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.DevAPI.Port).Msg("dev api listening on /api/auth")
		if err := srv.Start(":" + cfg.DevAPI.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("dev api stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Echo().Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
