package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sunrise-apartments/portal/internal/core/domain"
	"github.com/sunrise-apartments/portal/internal/core/ports"
)

// AuthService orchestrates the auth gateway and the session store.
type AuthService struct {
	gateway ports.AuthGateway
	store   ports.SessionStore
	policy  *domain.AccessPolicy
	log     zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(gateway ports.AuthGateway, store ports.SessionStore, policy *domain.AccessPolicy, log zerolog.Logger) *AuthService {
	return &AuthService{gateway: gateway, store: store, policy: policy, log: log}
}

// Login exchanges credentials for a session in two phases: the login
// response is stored first, then the canonical profile replaces it. A failed
// profile fetch right after login keeps the fresh credential and the login
// response's identity instead of signing the user out.
//
// next is an optional destination to return to; it is honoured only when it
// is a local path the signed-in role may view.
func (s *AuthService) Login(ctx context.Context, email, password, next string) (*domain.LoginResult, error) {
	credential, identity, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.store.Login(ctx, credential, identity); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	fresh, err := s.gateway.RefreshProfile(ctx)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("email", identity.Email).
			Msg("profile refresh after login failed, keeping login response identity")
	default:
		applied, err := s.store.Refresh(ctx, credential, fresh)
		if err != nil {
			s.log.Warn().Err(err).Str("email", identity.Email).Msg("failed to store refreshed profile")
		} else if !applied {
			s.log.Debug().Str("email", identity.Email).Msg("stale profile response discarded")
		}
	}

	session := s.store.Current()
	if !session.Authenticated() {
		// Logged out concurrently while the profile was being fetched.
		return nil, domain.ErrNotAuthenticated
	}
	s.log.Info().Str("email", session.Identity.Email).Str("role", string(session.Role())).Msg("user logged in")

	return &domain.LoginResult{Session: session, Redirect: s.redirectAfterLogin(session.Role(), next)}, nil
}

func (s *AuthService) redirectAfterLogin(role domain.Role, next string) string {
	if next != "" && isLocalPath(next) && role.Known() && s.policy.Allows(role, next) {
		return next
	}
	return role.Home()
}

// isLocalPath rejects absolute and scheme-relative URLs so next can never
// send the user off-site.
func isLocalPath(p string) bool {
	if len(p) == 0 || p[0] != '/' {
		return false
	}
	return len(p) == 1 || (p[1] != '/' && p[1] != '\\')
}

// Logout tears down the server-side session on a best-effort basis and then
// clears the local session.
func (s *AuthService) Logout(ctx context.Context) domain.Session {
	if s.store.Current().Authenticated() {
		if err := s.gateway.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	s.store.Logout(ctx)
	return s.store.Current()
}

// RefreshProfile fetches the canonical profile. An expired credential signs
// the user out and is returned to the caller.
func (s *AuthService) RefreshProfile(ctx context.Context) (domain.Session, error) {
	current := s.store.Current()
	if !current.Authenticated() {
		return current, domain.ErrNotAuthenticated
	}

	identity, err := s.gateway.RefreshProfile(ctx)
	if err != nil {
		s.expireOn(ctx, err, current.Credential)
		return s.store.Current(), err
	}

	if _, err := s.store.Refresh(ctx, current.Credential, identity); err != nil {
		return s.store.Current(), fmt.Errorf("refresh profile: %w", err)
	}
	return s.store.Current(), nil
}

// UpdateProfile saves profile fields and stores the returned identity.
func (s *AuthService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Session, error) {
	current := s.store.Current()
	if !current.Authenticated() {
		return current, domain.ErrNotAuthenticated
	}

	identity, err := s.gateway.UpdateProfile(ctx, update)
	if err != nil {
		s.expireOn(ctx, err, current.Credential)
		return s.store.Current(), err
	}

	if _, err := s.store.Refresh(ctx, current.Credential, identity); err != nil {
		return s.store.Current(), fmt.Errorf("update profile: %w", err)
	}
	s.log.Info().Str("email", identity.Email).Msg("profile updated")
	return s.store.Current(), nil
}

// ChangePassword rotates the signed-in user's password.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) (string, error) {
	session := s.store.Current()
	if !session.Authenticated() {
		return "", domain.ErrNotAuthenticated
	}
	msg, err := s.gateway.ChangePassword(ctx, current, next)
	if err != nil {
		s.expireOn(ctx, err, session.Credential)
		return "", err
	}
	return msg, nil
}

// ForgotPassword triggers the recovery email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.gateway.ForgotPassword(ctx, email)
}

// Register creates an account on behalf of staff. The current session is
// kept unless the server rejects its credential.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	credential := s.store.Current().Credential
	identity, err := s.gateway.Register(ctx, reg)
	if err != nil {
		s.expireOn(ctx, err, credential)
		return nil, err
	}
	s.log.Info().Str("email", identity.Email).Str("role", string(identity.Role)).Msg("account registered")
	return identity, nil
}

// expireOn signs the user out when err reports that credential was rejected.
// A newer session started while the request was in flight is left alone.
func (s *AuthService) expireOn(ctx context.Context, err error, credential string) {
	if !errors.Is(err, domain.ErrCredentialExpired) {
		return
	}
	if s.store.Expire(ctx, credential) {
		s.log.Info().Msg("credential expired, logging out")
	}
}
