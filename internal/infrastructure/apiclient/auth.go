package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// Login exchanges email and password for a credential and identity. A
// success response without a token, a user, a user email or a known role is
// reported as MalformedResponse and never reaches the session.
func (c *Client) Login(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	const op = "login"

	r, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Username: email, Password: password},
	})
	if err != nil {
		return "", nil, record(op, err)
	}
	if !r.ok() {
		msg := r.serverMessage()
		if msg == "" {
			msg = domain.GenericLoginMessage
		}
		return "", nil, record(op, &domain.AuthError{Kind: domain.ErrAuthenticationFailed, Status: r.status, Message: msg})
	}

	var resp tokenResponse
	if err := c.decode(r, &resp); err != nil {
		return "", nil, record(op, err)
	}
	return resp.Token, resp.User.toDomain(), record(op, nil)
}

// RefreshProfile fetches the canonical profile with the stored credential.
// A 401 is reported as CredentialExpired; the session is left for the
// caller to clear.
func (c *Client) RefreshProfile(ctx context.Context) (*domain.Identity, error) {
	const op = "me"

	r, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/auth/me", authed: true})
	if err != nil {
		return nil, record(op, err)
	}
	identity, err := c.profile(r)
	return identity, record(op, err)
}

// UpdateProfile saves the given profile fields and returns the updated
// identity.
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error) {
	const op = "profile"

	r, err := c.do(ctx, call{op: op, method: http.MethodPut, path: "/auth/profile", body: update, authed: true})
	if err != nil {
		return nil, record(op, err)
	}
	identity, err := c.profile(r)
	return identity, record(op, err)
}

func (c *Client) profile(r reply) (*domain.Identity, error) {
	switch {
	case r.status == http.StatusUnauthorized:
		return nil, &domain.AuthError{Kind: domain.ErrCredentialExpired, Status: r.status, Message: r.serverMessage()}
	case !r.ok():
		return nil, &domain.AuthError{Kind: domain.ErrRequestFailed, Status: r.status, Message: r.serverMessage()}
	}

	var resp profileResponse
	if err := json.Unmarshal(r.body, &resp); err != nil {
		return nil, &domain.AuthError{Kind: domain.ErrMalformedResponse, Status: r.status, Err: err}
	}
	if resp.Success != nil && !*resp.Success {
		return nil, &domain.AuthError{Kind: domain.ErrRequestFailed, Status: r.status, Message: resp.Message}
	}
	if err := c.validate.Struct(&resp); err != nil {
		return nil, &domain.AuthError{Kind: domain.ErrMalformedResponse, Status: r.status, Err: err}
	}
	return resp.Data.toDomain(), nil
}

// Register creates an account. The returned token belongs to the new
// account and is discarded.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	const op = "register"

	r, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/auth/register",
		body: registerRequest{
			Username:    reg.Username,
			PhoneNumber: reg.PhoneNumber,
			Email:       reg.Email,
			Password:    reg.Password,
			Role:        string(reg.Role),
		},
		authed: true,
	})
	if err != nil {
		return nil, record(op, asRequestFailed(err))
	}
	if !r.ok() {
		return nil, record(op, rejected(r, true))
	}

	var resp registerResponse
	if err := c.decode(r, &resp); err != nil {
		return nil, record(op, err)
	}
	return resp.User.toDomain(), record(op, nil)
}

// ChangePassword rotates the signed-in user's password. A wrong current
// password is a RequestFailed; a rejected credential is CredentialExpired.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (string, error) {
	return c.passThrough(ctx, call{
		op:     "change_password",
		method: http.MethodPost,
		path:   "/auth/change-password",
		body:   changePasswordRequest{OldPassword: current, NewPassword: next},
		authed: true,
	})
}

// ForgotPassword asks the server to send a recovery email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.passThrough(ctx, call{
		op:     "forgot_password",
		method: http.MethodPost,
		path:   "/auth/forgot-password",
		body:   forgotPasswordRequest{Email: email},
	})
}

// Logout tears down the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.passThrough(ctx, call{op: "logout", method: http.MethodPost, path: "/auth/logout", authed: true})
	return err
}

// passThrough performs a call whose only payload is {message}. Failures are
// reported as RequestFailed, transport included, except a 401 on an
// authenticated call.
func (c *Client) passThrough(ctx context.Context, cl call) (string, error) {
	r, err := c.do(ctx, cl)
	if err != nil {
		return "", record(cl.op, asRequestFailed(err))
	}
	if !r.ok() {
		return "", record(cl.op, rejected(r, cl.authed))
	}
	return r.serverMessage(), record(cl.op, nil)
}

// rejected classifies a non-2xx reply. A 401 to a request that carried the
// credential means the server no longer accepts it.
func rejected(r reply, authed bool) error {
	kind := domain.ErrRequestFailed
	if authed && r.status == http.StatusUnauthorized {
		kind = domain.ErrCredentialExpired
	}
	return &domain.AuthError{Kind: kind, Status: r.status, Message: r.serverMessage()}
}

func asRequestFailed(err error) error {
	if ae, ok := err.(*domain.AuthError); ok {
		return &domain.AuthError{Kind: domain.ErrRequestFailed, Status: ae.Status, Message: ae.Message, Err: ae.Err}
	}
	return &domain.AuthError{Kind: domain.ErrRequestFailed, Err: err}
}
