package service

import (
	"github.com/sunrise-apartments/portal/internal/core/domain"
)

// Decide evaluates one navigation attempt. It is a pure function of the
// session snapshot and the policy; nothing is cached between calls.
//
//	loading                         → Pending
//	signed out, public              → Unauthenticated, render
//	signed out, restricted          → Unauthenticated, redirect to login
//	signed in, public or role match → AuthenticatedAllowed
//	signed in, role mismatch        → AuthenticatedDenied, redirect to unauthorized
func Decide(session domain.Session, policy *domain.AccessPolicy, destination string) domain.Decision {
	if session.Loading {
		return domain.Decision{State: domain.StatePending}
	}

	allowed, restricted := policy.Requirement(destination)

	if !session.Authenticated() {
		if restricted {
			return domain.Decision{State: domain.StateUnauthenticated, RedirectTo: domain.LoginDestination}
		}
		return domain.Decision{State: domain.StateUnauthenticated}
	}

	if !restricted {
		return domain.Decision{State: domain.StateAuthenticatedAllowed}
	}

	// Allowed sets only hold known roles, so an unknown role never matches.
	if _, ok := allowed[session.Role()]; ok {
		return domain.Decision{State: domain.StateAuthenticatedAllowed}
	}
	return domain.Decision{State: domain.StateAuthenticatedDenied, RedirectTo: domain.UnauthorizedDestination}
}
