package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/api/middleware"
	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// ctxSession returns the session snapshot the guard evaluated for this
// request. Handlers behind the guard only run for allowed sessions, so a
// missing or signed-out snapshot means the route was wired without it.
func ctxSession(c echo.Context) (domain.Session, error) {
	session, ok := c.Get(middleware.SessionKey).(domain.Session)
	if !ok || !session.Authenticated() {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return session, nil
}
