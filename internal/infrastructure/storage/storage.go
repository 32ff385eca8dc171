// Package storage selects and assembles the session slot backend from
// configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/core/ports"
	mongostore "github.com/sunrise-apartments/portal/internal/infrastructure/db/mongo"
	redisstore "github.com/sunrise-apartments/portal/internal/infrastructure/db/redis"
	"github.com/sunrise-apartments/portal/internal/infrastructure/storage/file"
	"github.com/sunrise-apartments/portal/internal/infrastructure/storage/memory"
	"github.com/sunrise-apartments/portal/internal/infrastructure/storage/sealed"
	"github.com/sunrise-apartments/portal/internal/pkg/config"
)

// Backend is a SlotStorage that can report its own health.
type Backend interface {
	ports.SlotStorage
	Ping(ctx context.Context) error
}

// Opened is a ready backend plus the function releasing its connections.
type Opened struct {
	Backend Backend
	Name    string
	Close   func(ctx context.Context) error
}

// Open connects the backend cfg selects and seals it when a secret is set.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Opened, error) {
	opened := &Opened{Name: cfg.Storage.Backend, Close: func(context.Context) error { return nil }}

	switch cfg.Storage.Backend {
	case "memory":
		opened.Backend = memory.New()

	case "file":
		fs, err := file.New(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		opened.Backend = fs

	case "redis":
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		opened.Backend = redisstore.NewSlotStore(client, cfg.Redis.KeyPrefix)
		opened.Close = func(context.Context) error { return client.Close() }

	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		opened.Backend = mongostore.NewSlotStore(db)
		opened.Close = client.Disconnect

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.Secret != "" {
		s, err := sealed.New(opened.Backend, cfg.Storage.Secret)
		if err != nil {
			_ = opened.Close(ctx)
			return nil, err
		}
		opened.Backend = s
		opened.Name += "+sealed"
	} else if cfg.IsProduction() {
		log.Warn().Str("backend", cfg.Storage.Backend).Msg("STORAGE_SECRET not set, session slots are stored in plain text")
	}

	log.Info().Str("backend", opened.Name).Msg("session storage ready")
	return opened, nil
}
