package ports

import (
	"context"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// AuthGateway talks to the external auth API. Every failure it returns is a
// *domain.AuthError.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (credential string, identity *domain.Identity, err error)
	RefreshProfile(ctx context.Context) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error)
	ChangePassword(ctx context.Context, current, next string) (message string, err error)
	ForgotPassword(ctx context.Context, email string) (message string, err error)
	Logout(ctx context.Context) error
}
