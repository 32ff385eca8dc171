package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedResponse    = errors.New("malformed response")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrCredentialExpired    = errors.New("credential expired")
	ErrUnreachable          = errors.New("api unreachable")
	ErrRequestFailed        = errors.New("request failed")
	ErrAccessDenied         = errors.New("access denied")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidPolicy    = errors.New("invalid access policy")
	ErrInvalidRent      = errors.New("monthly rent must not be negative")
)

// GenericLoginMessage is shown when the server rejects a login without
// explaining why.
const GenericLoginMessage = "login failed, please check your email and password"

// AuthError is the gateway's classified failure. errors.Is matches it
// against its Kind sentinel.
type AuthError struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Is(target error) bool { return target == e.Kind }

func (e *AuthError) Unwrap() error { return e.Err }

// UserMessage is the text safe to show the user: the server message when
// present, otherwise a short description of the kind.
func (e *AuthError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case ErrAuthenticationFailed:
		return GenericLoginMessage
	case ErrCredentialExpired:
		return "your session has expired, please log in again"
	case ErrUnreachable:
		return "the server could not be reached, please retry"
	case ErrMalformedResponse:
		return "the server returned an unexpected response"
	default:
		return "the request failed, please retry"
	}
}
