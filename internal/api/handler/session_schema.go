package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	// Next is where to land after login, honoured only for a local path the
	// signed-in role may view.
	Next string `json:"next"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type profileUpdateRequest struct {
	Fullname    *string `json:"fullname"`
	CitizenID   *string `json:"cccd"    validate:"omitempty,numeric,len=12"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dob"     validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender"  validate:"omitempty,oneof=male female other"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,nefield=CurrentPassword"`
}

type createAccountRequest struct {
	Username    string `json:"username"    validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,numeric,min=9,max=11"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	Role        string `json:"role"        validate:"required,role"`
}

type quoteRequest struct {
	MonthlyRent *decimal.Decimal `json:"monthlyRent" validate:"required"`
	StartDate   string           `json:"startDate"   validate:"required,datetime=2006-01-02"`
}

// --- Response types ---

type identityResponse struct {
	ID          string  `json:"id,omitempty"`
	Email       string  `json:"email"`
	Fullname    *string `json:"fullname"`
	DisplayName string  `json:"displayName"`
	Role        string  `json:"role"`
	CitizenID   *string `json:"cccd"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dob"`
	Gender      *string `json:"gender"`
	Phone       *string `json:"phone"`
}

// sessionResponse never carries the credential itself.
type sessionResponse struct {
	IsLoading           bool              `json:"isLoading"`
	IsAuthenticated     bool              `json:"isAuthenticated"`
	User                *identityResponse `json:"user,omitempty"`
	CredentialExpiresAt *time.Time        `json:"credentialExpiresAt,omitempty"`
}

type loginResponse struct {
	Session  sessionResponse `json:"session"`
	Redirect string          `json:"redirect"`
}

type accountResponse struct {
	User *identityResponse `json:"user"`
}

type quoteResponse struct {
	MonthlyRent     decimal.Decimal `json:"monthlyRent"`
	StartDate       string          `json:"startDate"`
	DaysInMonth     int             `json:"daysInMonth"`
	DaysRemaining   int             `json:"daysRemaining"`
	ProratedRent    decimal.Decimal `json:"proratedRent"`
	Deposit         decimal.Decimal `json:"deposit"`
	Total           decimal.Decimal `json:"total"`
	PriceConfigured bool            `json:"priceConfigured"`
}

type navLink struct {
	Destination string `json:"destination"`
	Title       string `json:"title"`
}

type viewResponse struct {
	Destination string            `json:"destination"`
	View        string            `json:"view"`
	Title       string            `json:"title"`
	User        *identityResponse `json:"user,omitempty"`
	Navigation  []navLink         `json:"navigation"`
}

func toIdentityResponse(id *domain.Identity) *identityResponse {
	if id == nil {
		return nil
	}
	return &identityResponse{
		ID:          id.ID,
		Email:       id.Email,
		Fullname:    id.Fullname,
		DisplayName: id.DisplayName(),
		Role:        string(id.Role),
		CitizenID:   id.CitizenID,
		Address:     id.Address,
		DateOfBirth: id.DateOfBirth,
		Gender:      id.Gender,
		Phone:       id.Phone,
	}
}

func toSessionResponse(s domain.Session) sessionResponse {
	resp := sessionResponse{
		IsLoading:           s.Loading,
		IsAuthenticated:     s.Authenticated(),
		CredentialExpiresAt: s.CredentialExpiresAt,
	}
	if resp.IsAuthenticated {
		resp.User = toIdentityResponse(s.Identity)
	}
	return resp
}

func toQuoteResponse(c domain.ProratedCharge) quoteResponse {
	return quoteResponse{
		MonthlyRent:     c.MonthlyRent,
		StartDate:       c.StartDate.Format(time.DateOnly),
		DaysInMonth:     c.DaysInMonth,
		DaysRemaining:   c.DaysRemaining,
		ProratedRent:    c.ProratedRent,
		Deposit:         c.Deposit,
		Total:           c.Total,
		PriceConfigured: c.PriceConfigured(),
	}
}
