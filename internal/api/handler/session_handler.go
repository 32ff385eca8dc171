package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/ports"
)

// SessionHandler exposes the session lifecycle: snapshot, login, logout and
// password recovery.
type SessionHandler struct {
	authService ports.AuthService
	session     ports.SessionReader
}

func NewSessionHandler(authService ports.AuthService, session ports.SessionReader) *SessionHandler {
	return &SessionHandler{authService: authService, session: session}
}

// Current returns the session snapshot.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.session.Current()))
}

// Login signs the user in and returns where they should land.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, req.Next)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Session:  toSessionResponse(result.Session),
		Redirect: result.Redirect,
	})
}

// Logout clears the session. Calling it while signed out is a no-op.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.authService.Logout(c.Request().Context())))
}

// ForgotPassword asks the API to send a recovery email.
//
// @Summary      Request password recovery
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /session/forgot-password [post]
func (h *SessionHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "recovery email sent"
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
