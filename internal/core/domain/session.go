package domain

import "time"

// Session is a read-only snapshot of the client-held authentication state.
type Session struct {
	Identity   *Identity
	Credential string
	Loading    bool
	// CredentialExpiresAt is read from the credential's exp claim when the
	// credential is a JWT. It is informational only.
	CredentialExpiresAt *time.Time
}

// Authenticated is true iff both the identity and the credential are present.
func (s Session) Authenticated() bool {
	return s.Identity != nil && s.Credential != ""
}

// Role returns the identity's role, or "" when signed out.
func (s Session) Role() Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// LoginResult is the session after a completed login and the destination
// the user should land on.
type LoginResult struct {
	Session  Session
	Redirect string
}
