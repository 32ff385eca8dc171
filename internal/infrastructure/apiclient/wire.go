package apiclient

import (
	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// wireUser is the user record as the API sends it. Older endpoints use
// Mongo's _id and phoneNumber; newer ones id and phone.
type wireUser struct {
	ID          string  `json:"id"`
	MongoID     string  `json:"_id"`
	Email       string  `json:"email" validate:"required"`
	Fullname    *string `json:"fullname"`
	Role        string  `json:"role" validate:"required,oneof=admin manager owner tenant accountant"`
	CitizenID   *string `json:"cccd"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dob"`
	Gender      *string `json:"gender"`
	Phone       *string `json:"phone"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (u *wireUser) toDomain() *domain.Identity {
	id := u.ID
	if id == "" {
		id = u.MongoID
	}
	phone := u.Phone
	if phone == nil {
		phone = u.PhoneNumber
	}
	return &domain.Identity{
		ID:          id,
		Email:       u.Email,
		Fullname:    u.Fullname,
		Role:        domain.Role(u.Role),
		CitizenID:   u.CitizenID,
		Address:     u.Address,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
		Phone:       phone,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// tokenResponse is returned by /auth/login.
type tokenResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token" validate:"required"`
	User    *wireUser `json:"user" validate:"required"`
}

// registerResponse carries the new account's token, which the portal does
// not use: staff stay signed in as themselves.
type registerResponse struct {
	Message string    `json:"message"`
	User    *wireUser `json:"user" validate:"required"`
}

// profileResponse is returned by /auth/me and /auth/profile.
type profileResponse struct {
	Success *bool     `json:"success"`
	Message string    `json:"message"`
	Data    *wireUser `json:"data" validate:"required"`
}

// messageResponse is the envelope of pass-through calls and of every error.
type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m messageResponse) text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}
