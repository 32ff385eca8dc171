package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/api/middleware"
	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// view describes one portal screen.
type view struct {
	destination string
	name        string
	title       string
	// menu marks screens listed in the navigation of a signed-in user.
	menu bool
}

// views is the portal's screen table, in navigation order.
var views = []view{
	{destination: "/", name: "home", title: "Sunrise Apartments"},
	{destination: "/rooms", name: "rooms", title: "Rooms", menu: true},
	{destination: "/rules", name: "rules", title: "House rules", menu: true},
	{destination: domain.LoginDestination, name: "login", title: "Sign in"},
	{destination: "/register", name: "register", title: "Create account"},
	{destination: "/forgot-password", name: "forgot_password", title: "Forgot password"},
	{destination: domain.UnauthorizedDestination, name: "unauthorized", title: "Access denied"},
	{destination: "/admin", name: "admin_dashboard", title: "Administration", menu: true},
	{destination: "/owner", name: "owner_dashboard", title: "Owner dashboard", menu: true},
	{destination: "/manager", name: "manager_dashboard", title: "Manager dashboard", menu: true},
	{destination: "/accountant", name: "accountant_dashboard", title: "Accounting", menu: true},
	{destination: "/tenant", name: "tenant_dashboard", title: "My apartment", menu: true},
	{destination: "/contracts", name: "contracts", title: "Contracts", menu: true},
	{destination: "/accounts", name: "accounts", title: "Accounts", menu: true},
	{destination: "/invoices", name: "invoices", title: "Invoices", menu: true},
	{destination: "/profile", name: "profile", title: "My profile", menu: true},
}

// PageHandler renders JSON view descriptors for the portal screens. The
// guard has already decided the request may be shown.
type PageHandler struct {
	policy *domain.AccessPolicy
}

func NewPageHandler(policy *domain.AccessPolicy) *PageHandler {
	return &PageHandler{policy: policy}
}

// Destinations lists the screen paths, for route registration.
func (h *PageHandler) Destinations() []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.destination)
	}
	return out
}

// Show renders the view descriptor for the requested path.
//
// @Summary      Portal screen
// @Tags         pages
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      404  {object}  errorResponse
// @Router       /{destination} [get]
func (h *PageHandler) Show(c echo.Context) error {
	path := c.Request().URL.Path
	v, ok := lookupView(path)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}

	resp := viewResponse{
		Destination: path,
		View:        v.name,
		Title:       v.title,
	}

	session, _ := c.Get(middleware.SessionKey).(domain.Session)
	resp.User = toIdentityResponse(session.Identity)
	resp.Navigation = h.navigation(session.Role())
	return c.JSON(http.StatusOK, resp)
}

// navigation lists the menu screens role may open. A signed-out visitor gets
// the public ones.
func (h *PageHandler) navigation(role domain.Role) []navLink {
	links := []navLink{}
	for _, v := range views {
		if !v.menu {
			continue
		}
		if !h.policy.Allows(role, v.destination) {
			continue
		}
		links = append(links, navLink{Destination: v.destination, Title: v.title})
	}
	return links
}

// lookupView finds the screen owning path; sub-paths belong to their
// section.
func lookupView(path string) (view, bool) {
	path = "/" + strings.Trim(path, "/")
	var best view
	found := false
	for _, v := range views {
		if path == v.destination || (v.destination != "/" && strings.HasPrefix(path, v.destination+"/")) {
			if !found || len(v.destination) > len(best.destination) {
				best, found = v, true
			}
		}
	}
	return best, found
}
