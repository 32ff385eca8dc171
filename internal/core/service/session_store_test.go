package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub storage
// ---------------------------------------------------------------------------

type stubStorage struct {
	slots   map[string]string
	getErr  error
	setErr  map[string]error
	deleted []string
}

func newStubStorage() *stubStorage {
	return &stubStorage{slots: make(map[string]string), setErr: make(map[string]error)}
}

func (s *stubStorage) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.slots[key]
	if !ok {
		return "", ports.ErrSlotNotFound
	}
	return v, nil
}

func (s *stubStorage) Set(_ context.Context, key, value string) error {
	if err := s.setErr[key]; err != nil {
		return err
	}
	s.slots[key] = value
	return nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	delete(s.slots, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func newIdentity(email string, role domain.Role) *domain.Identity {
	return &domain.Identity{ID: email, Email: email, Role: role}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func assertPaired(t *testing.T, s domain.Session) {
	t.Helper()
	if s.Authenticated() != (s.Identity != nil && s.Credential != "") {
		t.Fatalf("authenticated flag out of sync: %+v", s)
	}
	if (s.Identity == nil) != (s.Credential == "") {
		t.Fatalf("identity and credential not paired: identity=%v credential=%q", s.Identity, s.Credential)
	}
}

// ---------------------------------------------------------------------------
// Initialize
// ---------------------------------------------------------------------------

func TestSessionStore_StartsLoading(t *testing.T) {
	store := NewSessionStore(newStubStorage(), zerolog.Nop())

	s := store.Current()
	if !s.Loading || s.Authenticated() {
		t.Fatalf("expected loading and signed out, got %+v", s)
	}
}

func TestSessionStore_Initialize_Rehydrates(t *testing.T) {
	storage := newStubStorage()
	storage.slots[CredentialSlot] = "tok-1"
	storage.slots[IdentitySlot] = mustJSON(t, newIdentity("anna@example.com", domain.RoleOwner))

	store := NewSessionStore(storage, zerolog.Nop())
	s := store.Initialize(context.Background())

	if s.Loading {
		t.Fatalf("expected loading to be false")
	}
	if !s.Authenticated() || s.Credential != "tok-1" || s.Role() != domain.RoleOwner {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestSessionStore_Initialize_FailsClosed(t *testing.T) {
	cases := []struct {
		name  string
		slots map[string]string
	}{
		{"empty storage", map[string]string{}},
		{"credential only", map[string]string{CredentialSlot: "tok"}},
		{"identity only", map[string]string{IdentitySlot: `{"email":"a@b.c","role":"admin"}`}},
		{"unparsable identity", map[string]string{CredentialSlot: "tok", IdentitySlot: `{"email":`}},
		{"null identity", map[string]string{CredentialSlot: "tok", IdentitySlot: `null`}},
		{"empty credential", map[string]string{CredentialSlot: "", IdentitySlot: `{"email":"a@b.c","role":"admin"}`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := newStubStorage()
			for k, v := range tc.slots {
				storage.slots[k] = v
			}

			store := NewSessionStore(storage, zerolog.Nop())
			s := store.Initialize(context.Background())

			if s.Authenticated() || s.Loading {
				t.Fatalf("expected signed out and not loading, got %+v", s)
			}
			assertPaired(t, s)
			if len(storage.slots) != 0 {
				t.Fatalf("expected both slots cleared, got %v", storage.slots)
			}
		})
	}
}

func TestSessionStore_Initialize_StorageErrorFailsClosed(t *testing.T) {
	storage := newStubStorage()
	storage.slots[CredentialSlot] = "tok"
	storage.getErr = errors.New("disk on fire")

	store := NewSessionStore(storage, zerolog.Nop())
	s := store.Initialize(context.Background())

	if s.Authenticated() || s.Loading {
		t.Fatalf("expected signed out, got %+v", s)
	}
	if len(storage.deleted) != 2 {
		t.Fatalf("expected both slots deleted, got %v", storage.deleted)
	}
}

func TestSessionStore_Initialize_RunsOnce(t *testing.T) {
	storage := newStubStorage()
	store := NewSessionStore(storage, zerolog.Nop())
	store.Initialize(context.Background())

	storage.slots[CredentialSlot] = "tok-late"
	storage.slots[IdentitySlot] = mustJSON(t, newIdentity("late@example.com", domain.RoleAdmin))

	if s := store.Initialize(context.Background()); s.Authenticated() {
		t.Fatalf("second Initialize must not rehydrate again")
	}
}

func TestSessionStore_Initialize_UnknownRoleKept(t *testing.T) {
	storage := newStubStorage()
	storage.slots[CredentialSlot] = "tok"
	storage.slots[IdentitySlot] = `{"email":"x@example.com","role":"superuser"}`

	store := NewSessionStore(storage, zerolog.Nop())
	s := store.Initialize(context.Background())

	if !s.Authenticated() {
		t.Fatalf("expected rehydrated session")
	}
	if s.Role().Known() {
		t.Fatalf("expected unknown role, got %q", s.Role())
	}
}

// ---------------------------------------------------------------------------
// Login / Refresh / Logout
// ---------------------------------------------------------------------------

func TestSessionStore_Login_PersistsAndPublishes(t *testing.T) {
	storage := newStubStorage()
	store := NewSessionStore(storage, zerolog.Nop())
	store.Initialize(context.Background())

	id := newIdentity("bao@example.com", domain.RoleManager)
	if err := store.Login(context.Background(), "tok-2", id); err != nil {
		t.Fatalf("login: %v", err)
	}

	s := store.Current()
	if !s.Authenticated() || s.Credential != "tok-2" || s.Identity.Email != "bao@example.com" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if storage.slots[CredentialSlot] != "tok-2" {
		t.Fatalf("credential slot not written")
	}
	var stored domain.Identity
	if err := json.Unmarshal([]byte(storage.slots[IdentitySlot]), &stored); err != nil || stored.Role != domain.RoleManager {
		t.Fatalf("identity slot not written: %v %+v", err, stored)
	}

	// Mutating the caller's value must not leak into the store.
	id.Role = domain.RoleAdmin
	if store.Current().Role() != domain.RoleManager {
		t.Fatalf("store shares identity with caller")
	}
}

func TestSessionStore_Login_StorageFailureKeepsPreviousState(t *testing.T) {
	storage := newStubStorage()
	store := NewSessionStore(storage, zerolog.Nop())
	store.Initialize(context.Background())
	if err := store.Login(context.Background(), "tok-old", newIdentity("old@example.com", domain.RoleTenant)); err != nil {
		t.Fatalf("login: %v", err)
	}

	storage.setErr[IdentitySlot] = errors.New("quota exceeded")
	if err := store.Login(context.Background(), "tok-new", newIdentity("new@example.com", domain.RoleAdmin)); err == nil {
		t.Fatalf("expected error")
	}

	s := store.Current()
	if s.Credential != "tok-old" || s.Identity.Email != "old@example.com" {
		t.Fatalf("previous session not preserved: %+v", s)
	}
}

func TestSessionStore_Login_RejectsPartialData(t *testing.T) {
	store := NewSessionStore(newStubStorage(), zerolog.Nop())
	store.Initialize(context.Background())

	if err := store.Login(context.Background(), "", newIdentity("a@example.com", domain.RoleAdmin)); err == nil {
		t.Fatalf("expected error for missing credential")
	}
	if err := store.Login(context.Background(), "tok", nil); err == nil {
		t.Fatalf("expected error for missing identity")
	}
	assertPaired(t, store.Current())
}

func TestSessionStore_Refresh_LaterCallWins(t *testing.T) {
	store := NewSessionStore(newStubStorage(), zerolog.Nop())
	store.Initialize(context.Background())
	_ = store.Login(context.Background(), "tok", newIdentity("c@example.com", domain.RoleTenant))

	applied, err := store.Refresh(context.Background(), "tok", newIdentity("c@example.com", domain.RoleManager))
	if err != nil || !applied {
		t.Fatalf("expected refresh applied, got %v %v", applied, err)
	}
	if store.Current().Role() != domain.RoleManager {
		t.Fatalf("expected refreshed role")
	}
}

func TestSessionStore_Refresh_StaleIgnored(t *testing.T) {
	store := NewSessionStore(newStubStorage(), zerolog.Nop())
	store.Initialize(context.Background())
	_ = store.Login(context.Background(), "tok-a", newIdentity("a@example.com", domain.RoleTenant))
	store.Logout(context.Background())

	applied, err := store.Refresh(context.Background(), "tok-a", newIdentity("a@example.com", domain.RoleAdmin))
	if err != nil || applied {
		t.Fatalf("expected stale refresh ignored, got %v %v", applied, err)
	}
	if store.Current().Authenticated() {
		t.Fatalf("stale refresh must not sign the user back in")
	}
}

func TestSessionStore_Expire_OnlyActiveCredential(t *testing.T) {
	storage := newStubStorage()
	store := NewSessionStore(storage, zerolog.Nop())
	store.Initialize(context.Background())
	_ = store.Login(context.Background(), "tok-b", newIdentity("b@example.com", domain.RoleAdmin))

	if store.Expire(context.Background(), "tok-a") {
		t.Fatalf("expiry of an older credential must be ignored")
	}
	if !store.Current().Authenticated() || storage.slots[CredentialSlot] != "tok-b" {
		t.Fatalf("session changed by a stale expiry: %+v", store.Current())
	}

	if !store.Expire(context.Background(), "tok-b") {
		t.Fatalf("expected active credential to expire")
	}
	if store.Current().Authenticated() || len(storage.slots) != 0 {
		t.Fatalf("expected signed out with empty slots, got %v", storage.slots)
	}
	if store.Expire(context.Background(), "tok-b") {
		t.Fatalf("expire while signed out must report false")
	}
}

func TestSessionStore_Logout_Idempotent(t *testing.T) {
	storage := newStubStorage()
	store := NewSessionStore(storage, zerolog.Nop())
	store.Initialize(context.Background())
	_ = store.Login(context.Background(), "tok", newIdentity("d@example.com", domain.RoleAccountant))

	store.Logout(context.Background())
	once := store.Current()
	store.Logout(context.Background())
	twice := store.Current()

	if once.Authenticated() || twice.Authenticated() || once.Loading || twice.Loading {
		t.Fatalf("expected signed out: %+v %+v", once, twice)
	}
	if once.Credential != twice.Credential || (once.Identity == nil) != (twice.Identity == nil) {
		t.Fatalf("logout not idempotent: %+v vs %+v", once, twice)
	}
	if len(storage.slots) != 0 {
		t.Fatalf("slots not cleared: %v", storage.slots)
	}
}

func TestSessionStore_CredentialAndIdentityStayPaired(t *testing.T) {
	store := NewSessionStore(newStubStorage(), zerolog.Nop())
	store.Initialize(context.Background())
	ctx := context.Background()

	steps := []func(){
		func() { _ = store.Login(ctx, "t1", newIdentity("a@example.com", domain.RoleAdmin)) },
		func() { store.Logout(ctx) },
		func() { store.Logout(ctx) },
		func() { _ = store.Login(ctx, "t2", newIdentity("b@example.com", domain.RoleOwner)) },
		func() { _ = store.Login(ctx, "t3", newIdentity("c@example.com", domain.RoleTenant)) },
		func() { _, _ = store.Refresh(ctx, "t2", newIdentity("b@example.com", domain.RoleAdmin)) },
		func() { store.Logout(ctx) },
	}
	for i, step := range steps {
		step()
		s := store.Current()
		assertPaired(t, s)
		if i == 5 && s.Credential != "t3" {
			t.Fatalf("stale refresh replaced the session: %+v", s)
		}
	}
}

func TestSessionStore_CredentialExpiryFromJWT(t *testing.T) {
	exp := time.Date(2031, 5, 1, 12, 0, 0, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	store := NewSessionStore(newStubStorage(), zerolog.Nop())
	store.Initialize(context.Background())
	_ = store.Login(context.Background(), tok, newIdentity("e@example.com", domain.RoleAdmin))

	got := store.Current().CredentialExpiresAt
	if got == nil || !got.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, got)
	}

	_ = store.Login(context.Background(), "opaque-token", newIdentity("e@example.com", domain.RoleAdmin))
	if store.Current().CredentialExpiresAt != nil {
		t.Fatalf("opaque credential must not carry an expiry")
	}
}
