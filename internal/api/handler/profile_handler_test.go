package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

func TestProfileHandler_RequiresSession(t *testing.T) {
	handler := NewProfileHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/profile/refresh", "", nil)
	if he, ok := handler.Refresh(c).(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session snapshot")
	}
}

func TestProfileHandler_Refresh_ExpiredCredential(t *testing.T) {
	expired := &domain.AuthError{Kind: domain.ErrCredentialExpired, Status: http.StatusUnauthorized}
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context) (domain.Session, error) { return domain.Session{}, expired },
	}
	handler := NewProfileHandler(stub)
	session := managerSession()

	c, _ := newContext(http.MethodPost, "/profile/refresh", "", &session)
	if err := handler.Refresh(c); err != expired {
		t.Fatalf("expected credential expiry to reach the error handler, got %v", err)
	}
}

func TestProfileHandler_Update(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(ctx context.Context, update domain.ProfileUpdate) (domain.Session, error) {
			if update.Address == nil || *update.Address != "12 Nguyen Hue" {
				t.Fatalf("address not forwarded: %+v", update)
			}
			if update.Fullname != nil {
				t.Fatalf("omitted field must stay nil")
			}
			s := managerSession()
			s.Identity.Address = update.Address
			return s, nil
		},
	}
	handler := NewProfileHandler(stub)
	session := managerSession()

	c, rec := newContext(http.MethodPut, "/profile", `{"address":"12 Nguyen Hue","cccd":"079123456789","dob":"1990-04-02"}`, &session)
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "12 Nguyen Hue") {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestProfileHandler_Update_Validation(t *testing.T) {
	handler := NewProfileHandler(&stubAuthService{})
	session := managerSession()

	cases := map[string]string{
		"short cccd": `{"cccd":"123"}`,
		"bad dob":    `{"dob":"02/04/1990"}`,
		"bad gender": `{"gender":"unknown"}`,
		"not json":   `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPut, "/profile", body, &session)
			if he, ok := handler.Update(c).(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400")
			}
		})
	}
}

func TestProfileHandler_ChangePassword(t *testing.T) {
	stub := &stubAuthService{
		changePasswordFn: func(ctx context.Context, current, next string) (string, error) {
			if current != "old-secret" || next != "new-secret" {
				t.Fatalf("unexpected args %q %q", current, next)
			}
			return "", nil
		},
	}
	handler := NewProfileHandler(stub)
	session := managerSession()

	c, rec := newContext(http.MethodPost, "/profile/password", `{"currentPassword":"old-secret","newPassword":"new-secret"}`, &session)
	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "password changed") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodPost, "/profile/password", `{"currentPassword":"same-secret","newPassword":"same-secret"}`, &session)
	if he, ok := handler.ChangePassword(c).(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when the new password equals the current one")
	}
}
