package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

func destinations(resp viewResponse) map[string]bool {
	out := map[string]bool{}
	for _, l := range resp.Navigation {
		out[l.Destination] = true
	}
	return out
}

func TestPageHandler_Show_SignedIn(t *testing.T) {
	handler := NewPageHandler(domain.DefaultAccessPolicy())
	session := managerSession()

	c, rec := newContext(http.MethodGet, "/contracts/42", "", &session)
	if err := handler.Show(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp viewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.View != "contracts" || resp.Destination != "/contracts/42" {
		t.Fatalf("unexpected view: %+v", resp)
	}
	if resp.User == nil || resp.User.Role != "manager" {
		t.Fatalf("expected manager identity, got %+v", resp.User)
	}

	nav := destinations(resp)
	for _, want := range []string{"/manager", "/contracts", "/accounts", "/profile", "/rooms"} {
		if !nav[want] {
			t.Errorf("expected %s in navigation", want)
		}
	}
	for _, hidden := range []string{"/admin", "/invoices", "/tenant"} {
		if nav[hidden] {
			t.Errorf("%s must not be offered to a manager", hidden)
		}
	}
}

func TestPageHandler_Show_SignedOut(t *testing.T) {
	handler := NewPageHandler(domain.DefaultAccessPolicy())

	c, rec := newContext(http.MethodGet, "/rooms", "", nil)
	if err := handler.Show(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp viewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.View != "rooms" || resp.User != nil {
		t.Fatalf("unexpected view: %+v", resp)
	}
	nav := destinations(resp)
	if len(nav) != 2 || !nav["/rooms"] || !nav["/rules"] {
		t.Fatalf("expected only public navigation, got %+v", resp.Navigation)
	}
}

func TestPageHandler_Show_Unknown(t *testing.T) {
	handler := NewPageHandler(domain.DefaultAccessPolicy())

	c, _ := newContext(http.MethodGet, "/nowhere", "", nil)
	if he, ok := handler.Show(c).(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404")
	}
}

func TestLookupView(t *testing.T) {
	cases := map[string]string{
		"/":               "home",
		"/login":          "login",
		"/invoices/2024/": "invoices",
		"/admin/users":    "admin_dashboard",
	}
	for path, want := range cases {
		v, ok := lookupView(path)
		if !ok || v.name != want {
			t.Errorf("lookupView(%q) = %q, want %q", path, v.name, want)
		}
	}
	if _, ok := lookupView("/administrator"); ok {
		t.Errorf("/administrator must not match /admin")
	}
}
