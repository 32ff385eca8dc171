package ports

import (
	"context"
	"errors"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// ErrSlotNotFound is returned by SlotStorage.Get for an empty slot.
var ErrSlotNotFound = errors.New("slot not found")

// SlotStorage is the durable key/value store holding the credential and
// identity slots. Only the Session Store writes to it.
type SlotStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SessionReader is the read-only view of the Session Store handed to
// consumers that must not mutate the session.
type SessionReader interface {
	Current() domain.Session
}

// SessionStore is the single writer of session state.
type SessionStore interface {
	SessionReader
	Initialize(ctx context.Context) domain.Session
	Login(ctx context.Context, credential string, identity *domain.Identity) error
	Refresh(ctx context.Context, credential string, identity *domain.Identity) (bool, error)
	Logout(ctx context.Context)
	Expire(ctx context.Context, credential string) bool
}
