package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"
)

// AccountHandler lets staff create accounts for others. The session is not
// touched: staff stay signed in as themselves.
type AccountHandler struct {
	authService ports.AuthService
}

func NewAccountHandler(authService ports.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// Create registers a new account.
//
// @Summary      Create account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}

	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.authService.Register(c.Request().Context(), domain.Registration{
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, accountResponse{User: toIdentityResponse(identity)})
}
