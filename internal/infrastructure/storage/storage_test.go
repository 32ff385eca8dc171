package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/infrastructure/storage/sealed"
	"github.com/sunrise-apartments/portal/internal/pkg/config"
)

func TestOpen_File(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "session.json")

	opened, err := Open(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened.Name != "file" {
		t.Fatalf("unexpected name %q", opened.Name)
	}
	if err := opened.Backend.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpen_SealedMemory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Backend = "memory"
	cfg.Storage.Secret = "s3cret"

	opened, err := Open(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := opened.Backend.(*sealed.Storage); !ok || opened.Name != "memory+sealed" {
		t.Fatalf("expected sealed backend, got %T %q", opened.Backend, opened.Name)
	}
}

func TestOpen_Unknown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Backend = "sqlite"
	if _, err := Open(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}
