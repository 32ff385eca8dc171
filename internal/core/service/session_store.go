package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"
	"github.com/sunrise-apartments/portal/internal/pkg/metrics"
)

// Durable slot keys.
const (
	CredentialSlot = "credential"
	IdentitySlot   = "identity"
)

// SessionStore is the single source of truth for the signed-in session.
// Mutations hold the write lock across the storage write and the publish,
// so readers never observe a half-applied session.
type SessionStore struct {
	storage ports.SlotStorage
	log     zerolog.Logger

	initOnce sync.Once

	mu         sync.RWMutex
	identity   *domain.Identity
	credential string
	loading    bool
	expiresAt  *time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns a store in the "loading, unauthenticated" state.
func NewSessionStore(storage ports.SlotStorage, log zerolog.Logger) *SessionStore {
	return &SessionStore{storage: storage, log: log, loading: true}
}

// Initialize rehydrates the session from durable storage. It runs once;
// later calls return the current snapshot. Any read or parse failure clears
// both slots and leaves the session signed out.
func (s *SessionStore) Initialize(ctx context.Context) domain.Session {
	s.initOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		credential, identity, err := s.readSlots(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("stored session discarded")
			s.clearSlots(ctx)
			s.publish("", nil)
			metrics.SessionTransitionsTotal.WithLabelValues("rehydrate_failed").Inc()
			return
		}

		s.publish(credential, identity)
		metrics.SessionTransitionsTotal.WithLabelValues("rehydrated").Inc()
		s.log.Info().Str("email", identity.Email).Str("role", string(identity.Role)).Msg("session rehydrated")
	})
	return s.Current()
}

func (s *SessionStore) readSlots(ctx context.Context) (string, *domain.Identity, error) {
	credential, err := s.storage.Get(ctx, CredentialSlot)
	if err != nil {
		return "", nil, fmt.Errorf("read credential: %w", err)
	}
	raw, err := s.storage.Get(ctx, IdentitySlot)
	if err != nil {
		return "", nil, fmt.Errorf("read identity: %w", err)
	}
	if credential == "" {
		return "", nil, fmt.Errorf("read credential: %w", ports.ErrSlotNotFound)
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return "", nil, fmt.Errorf("parse identity: %w", err)
	}
	if identity.Email == "" {
		return "", nil, errors.New("parse identity: record has no email")
	}
	return credential, &identity, nil
}

// Login persists both slots and then publishes the authenticated session.
// On a storage failure the previous session is left in place.
func (s *SessionStore) Login(ctx context.Context, credential string, identity *domain.Identity) error {
	if credential == "" || identity == nil {
		return errors.New("session login: credential and identity are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeSlots(ctx, credential, identity); err != nil {
		return fmt.Errorf("session login: %w", err)
	}
	s.publish(credential, identity)
	metrics.SessionTransitionsTotal.WithLabelValues("login").Inc()
	return nil
}

// Refresh behaves like Login but only applies while credential is still the
// active one. It returns false when the session moved on (logout or another
// login) and the response is therefore stale.
func (s *SessionStore) Refresh(ctx context.Context, credential string, identity *domain.Identity) (bool, error) {
	if identity == nil {
		return false, errors.New("session refresh: identity is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.credential == "" || s.credential != credential {
		metrics.SessionTransitionsTotal.WithLabelValues("refresh_stale").Inc()
		return false, nil
	}
	if err := s.writeSlots(ctx, credential, identity); err != nil {
		return false, fmt.Errorf("session refresh: %w", err)
	}
	s.publish(credential, identity)
	metrics.SessionTransitionsTotal.WithLabelValues("refresh").Inc()
	return true, nil
}

// Logout clears both slots and the in-memory session. Calling it while
// signed out is a no-op with the same end state. Storage errors are logged;
// the in-memory session is cleared regardless.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearSlots(ctx)
	s.publish("", nil)
	metrics.SessionTransitionsTotal.WithLabelValues("logout").Inc()
}

// Expire signs out only while credential is still the active one. A 401
// answering a request made with an older credential must not end a session
// started since. It reports whether the session was cleared.
func (s *SessionStore) Expire(ctx context.Context, credential string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.credential == "" || s.credential != credential {
		metrics.SessionTransitionsTotal.WithLabelValues("expire_stale").Inc()
		return false
	}
	s.clearSlots(ctx)
	s.publish("", nil)
	metrics.SessionTransitionsTotal.WithLabelValues("expire").Inc()
	return true
}

// Current returns a snapshot of the session.
func (s *SessionStore) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Session{
		Identity:   s.identity.Clone(),
		Credential: s.credential,
		Loading:    s.loading,
	}
	if s.expiresAt != nil {
		exp := *s.expiresAt
		snap.CredentialExpiresAt = &exp
	}
	return snap
}

func (s *SessionStore) writeSlots(ctx context.Context, credential string, identity *domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := s.storage.Set(ctx, CredentialSlot, credential); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	if err := s.storage.Set(ctx, IdentitySlot, string(raw)); err != nil {
		s.rollbackCredential(ctx)
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// rollbackCredential restores the credential slot to the published value so
// the slots never hold a credential paired with another session's identity.
// Must be called with mu held.
func (s *SessionStore) rollbackCredential(ctx context.Context) {
	var err error
	if s.credential == "" {
		err = s.storage.Delete(ctx, CredentialSlot)
	} else {
		err = s.storage.Set(ctx, CredentialSlot, s.credential)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to roll back credential slot")
	}
}

func (s *SessionStore) clearSlots(ctx context.Context) {
	for _, key := range []string{CredentialSlot, IdentitySlot} {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log.Error().Err(err).Str("slot", key).Msg("failed to clear session slot")
		}
	}
}

// publish must be called with mu held. Identity and credential are always
// replaced together.
func (s *SessionStore) publish(credential string, identity *domain.Identity) {
	if credential == "" || identity == nil {
		credential, identity = "", nil
	}
	s.credential = credential
	s.identity = identity.Clone()
	s.expiresAt = credentialExpiry(credential)
	s.loading = false
}

// credentialExpiry reads the exp claim when the credential is a JWT. The
// signature is not verified: the portal never holds the signing key and the
// value is only displayed.
func credentialExpiry(credential string) *time.Time {
	if credential == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time.UTC()
	return &t
}
