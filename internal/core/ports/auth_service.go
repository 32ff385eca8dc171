package ports

import (
	"context"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// AuthService is the session-aware auth flow the HTTP layer drives.
type AuthService interface {
	Login(ctx context.Context, email, password, next string) (*domain.LoginResult, error)
	Logout(ctx context.Context) domain.Session
	RefreshProfile(ctx context.Context) (domain.Session, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Session, error)
	ChangePassword(ctx context.Context, current, next string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error)
}
