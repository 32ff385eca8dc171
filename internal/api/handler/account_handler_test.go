package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

func TestAccountHandler_Create(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
			if reg.Email != "bob@example.com" || reg.Role != domain.RoleTenant || reg.PhoneNumber != "0901234567" {
				t.Fatalf("unexpected registration: %+v", reg)
			}
			return &domain.Identity{ID: "u2", Email: reg.Email, Role: reg.Role}, nil
		},
	}
	handler := NewAccountHandler(stub)
	session := managerSession()

	body := `{"username":"bob","phoneNumber":"0901234567","email":"bob@example.com","password":"secret2","role":"tenant"}`
	c, rec := newContext(http.MethodPost, "/accounts", body, &session)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"email":"bob@example.com"`) || strings.Contains(rec.Body.String(), "secret2") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAccountHandler_Create_UnknownRole(t *testing.T) {
	handler := NewAccountHandler(&stubAuthService{})
	session := managerSession()

	body := `{"username":"bob","email":"bob@example.com","password":"secret2","role":"janitor"}`
	c, _ := newContext(http.MethodPost, "/accounts", body, &session)
	he, ok := handler.Create(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400")
	}
	if !strings.Contains(he.Message.(string), "role must be one of") {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestAccountHandler_Create_UpstreamConflict(t *testing.T) {
	conflict := &domain.AuthError{Kind: domain.ErrRequestFailed, Status: http.StatusConflict, Message: "email is already registered"}
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, reg domain.Registration) (*domain.Identity, error) { return nil, conflict },
	}
	handler := NewAccountHandler(stub)
	session := managerSession()

	body := `{"username":"bob","email":"bob@example.com","password":"secret2","role":"owner"}`
	c, _ := newContext(http.MethodPost, "/accounts", body, &session)
	if err := handler.Create(c); err != conflict {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
