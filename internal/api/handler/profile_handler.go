package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"
)

// ProfileHandler serves the signed-in user's own account.
type ProfileHandler struct {
	authService ports.AuthService
}

func NewProfileHandler(authService ports.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

// Refresh re-fetches the canonical profile.
//
// @Summary      Refresh profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /profile/refresh [post]
func (h *ProfileHandler) Refresh(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}
	session, err := h.authService.RefreshProfile(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Update saves profile fields. Omitted fields are left unchanged.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      profileUpdateRequest  true  "Profile fields"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}

	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.authService.UpdateProfile(c.Request().Context(), domain.ProfileUpdate{
		Fullname:    req.Fullname,
		CitizenID:   req.CitizenID,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// ChangePassword rotates the signed-in user's password.
//
// @Summary      Change password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /profile/password [post]
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "password changed"
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
