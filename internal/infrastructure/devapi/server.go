// Package devapi is an in-memory implementation of the auth endpoints the
// portal consumes. It backs local development (cmd/devapi) and the gateway
// tests; it is not the production API.
package devapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// Config captures the development API settings.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Server serves /api/auth/*.
type Server struct {
	echo     *echo.Echo
	users    *userStore
	secret   []byte
	tokenTTL time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	revoked map[string]struct{}
	now     func() time.Time
}

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error { return rv.v.Struct(i) }

// New builds the server with its routes registered.
func New(cfg Config, log zerolog.Logger) *Server {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	s := &Server{
		echo:     echo.New(),
		users:    newUserStore(),
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: ttl,
		log:      log,
		revoked:  make(map[string]struct{}),
		now:      time.Now,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = &requestValidator{v: validator.New()}
	s.echo.Use(echomiddleware.Recover())

	api := s.echo.Group("/api/auth")
	api.POST("/login", s.login)
	api.POST("/forgot-password", s.forgotPassword)

	authed := api.Group("", s.requireToken)
	authed.POST("/register", s.register)
	authed.POST("/change-password", s.changePassword)
	authed.POST("/logout", s.logout)
	authed.GET("/me", s.me)
	authed.PUT("/profile", s.updateProfile)

	return s
}

// Handler exposes the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

// Echo returns the underlying router, used for graceful shutdown.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Seed creates an account directly, bypassing the register endpoint.
func (s *Server) Seed(email, password string, role domain.Role, fullname string) error {
	u, err := s.users.create(strings.Split(email, "@")[0], email, password, "", role)
	if err != nil {
		return err
	}
	if fullname != "" {
		_, err = s.users.updateProfile(u.ID, domain.ProfileUpdate{Fullname: &fullname})
	}
	return err
}

// SetRole overwrites a user's stored role.
func (s *Server) SetRole(email, role string) error { return s.users.setRole(email, role) }

// HasUser reports whether an account with email exists.
func (s *Server) HasUser(email string) bool { return s.users.exists(email) }

// ── Tokens ────────────────────────────────────────────────────────────────────

func (s *Server) issueToken(u *user) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"role":  u.Role,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireToken validates the bearer JWT and injects the user id and token id.
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return message(c, http.StatusUnauthorized, "missing or invalid authorization header")
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil || !tkn.Valid {
			return message(c, http.StatusUnauthorized, "invalid or expired token")
		}

		jti, _ := claims["jti"].(string)
		s.mu.Lock()
		_, revoked := s.revoked[jti]
		s.mu.Unlock()
		if revoked {
			return message(c, http.StatusUnauthorized, "token has been revoked")
		}

		sub, _ := claims["sub"].(string)
		c.Set("user_id", sub)
		c.Set("jti", jti)
		return next(c)
	}
}

// ── Handlers ──────────────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username    string `json:"username" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required,oneof=admin manager owner tenant accountant"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *user  `json:"user"`
}

type profileResponse struct {
	Success bool  `json:"success"`
	Data    *user `json:"data"`
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}

func (s *Server) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := s.bind(c, &req); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}

	u, err := s.users.authenticate(req.Username, req.Password)
	if err != nil {
		// Unknown account and wrong password look the same to the client.
		return message(c, http.StatusUnauthorized, "email or password is incorrect")
	}

	token, err := s.issueToken(u)
	if err != nil {
		s.log.Error().Err(err).Msg("sign token")
		return message(c, http.StatusInternalServerError, "internal server error")
	}
	s.log.Info().Str("email", u.Email).Msg("dev api login")
	return c.JSON(http.StatusOK, tokenResponse{Message: "login successful", Token: token, User: u})
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := s.bind(c, &req); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}

	u, err := s.users.create(req.Username, req.Email, req.Password, req.PhoneNumber, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return message(c, http.StatusConflict, "email is already registered")
		}
		return message(c, http.StatusBadRequest, err.Error())
	}

	token, err := s.issueToken(u)
	if err != nil {
		return message(c, http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusCreated, tokenResponse{Message: "account created", Token: token, User: u})
}

func (s *Server) changePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := s.bind(c, &req); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}

	id, _ := c.Get("user_id").(string)
	if err := s.users.changePassword(id, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return message(c, http.StatusBadRequest, "current password is incorrect")
		}
		return message(c, http.StatusNotFound, err.Error())
	}
	return message(c, http.StatusOK, "password changed")
}

func (s *Server) forgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := s.bind(c, &req); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}
	// The same answer whether or not the account exists.
	s.log.Info().Str("email", req.Email).Bool("known", s.users.exists(req.Email)).Msg("dev api password recovery requested")
	return message(c, http.StatusOK, "if the account exists, a recovery email has been sent")
}

func (s *Server) logout(c echo.Context) error {
	jti, _ := c.Get("jti").(string)
	s.mu.Lock()
	s.revoked[jti] = struct{}{}
	s.mu.Unlock()
	return message(c, http.StatusOK, "logged out")
}

func (s *Server) me(c echo.Context) error {
	id, _ := c.Get("user_id").(string)
	u, err := s.users.byID(id)
	if err != nil {
		return message(c, http.StatusUnauthorized, "account no longer exists")
	}
	return c.JSON(http.StatusOK, profileResponse{Success: true, Data: u})
}

func (s *Server) updateProfile(c echo.Context) error {
	var req domain.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid payload")
	}

	id, _ := c.Get("user_id").(string)
	u, err := s.users.updateProfile(id, req)
	if err != nil {
		return message(c, http.StatusUnauthorized, "account no longer exists")
	}
	return c.JSON(http.StatusOK, profileResponse{Success: true, Data: u})
}
