package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

type stubSession struct {
	session domain.Session
}

func (s *stubSession) Current() domain.Session { return s.session }

func signedIn(role domain.Role) *stubSession {
	return &stubSession{session: domain.Session{
		Credential: "tok",
		Identity:   &domain.Identity{Email: "a@example.com", Role: role},
	}}
}

func runGuard(t *testing.T, cfg GuardConfig, target string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	if cfg.Policy == nil {
		cfg.Policy = domain.DefaultAccessPolicy()
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Guard(cfg)(func(c echo.Context) error {
		called = true
		if _, ok := c.Get(SessionKey).(domain.Session); !ok {
			t.Fatalf("session snapshot not set")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestGuard_Pending(t *testing.T) {
	rec, called := runGuard(t, GuardConfig{Session: &stubSession{session: domain.Session{Loading: true}}}, "/")
	if called {
		t.Fatalf("next must not run while loading")
	}
	if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 503 with Retry-After, got %d %q", rec.Code, rec.Header().Get("Retry-After"))
	}
}

func TestGuard_SignedOut(t *testing.T) {
	rec, called := runGuard(t, GuardConfig{Session: &stubSession{}}, "/rooms")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected public page to render, got %d", rec.Code)
	}

	rec, called = runGuard(t, GuardConfig{Session: &stubSession{}}, "/tenant")
	if called {
		t.Fatalf("next must not run")
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestGuard_PreserveDestination(t *testing.T) {
	cfg := GuardConfig{Session: &stubSession{}, PreserveDestination: true}
	rec, _ := runGuard(t, cfg, "/contracts/new?room=12")
	want := "/login?next=%2Fcontracts%2Fnew%3Froom%3D12"
	if got := rec.Header().Get(echo.HeaderLocation); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGuard_RoleMismatch(t *testing.T) {
	cfg := GuardConfig{Session: signedIn(domain.RoleTenant), PreserveDestination: true}
	rec, called := runGuard(t, cfg, "/admin")
	if called {
		t.Fatalf("next must not run")
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/unauthorized" {
		t.Fatalf("expected redirect to /unauthorized, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestGuard_RoleMatch(t *testing.T) {
	rec, called := runGuard(t, GuardConfig{Session: signedIn(domain.RoleAccountant)}, "/invoices/2024-05")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected accountant to reach invoices, got %d", rec.Code)
	}
}

func TestGuard_Skipper(t *testing.T) {
	cfg := GuardConfig{
		Session: &stubSession{session: domain.Session{Loading: true}},
		Skipper: SkipPrefixes("/health", "/metrics"),
	}
	e := echo.New()
	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		called := false
		h := Guard(cfg)(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})
		if err := h(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if !called {
			t.Fatalf("%s should bypass the guard", path)
		}
	}

	if SkipPrefixes("/health")(e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), httptest.NewRecorder())) {
		t.Fatalf("/healthz must not match /health")
	}
}
