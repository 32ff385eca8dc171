package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	LoginDestination        = "/login"
	UnauthorizedDestination = "/unauthorized"
)

// DecisionState is the Route Guard state for a single navigation attempt.
type DecisionState string

const (
	StatePending              DecisionState = "pending"
	StateUnauthenticated      DecisionState = "unauthenticated"
	StateAuthenticatedAllowed DecisionState = "authenticated_allowed"
	StateAuthenticatedDenied  DecisionState = "authenticated_denied"
)

// Decision is the outcome of evaluating a destination against the session.
// RedirectTo is empty when the destination may be rendered.
type Decision struct {
	State      DecisionState
	RedirectTo string
}

// Render reports whether the destination may be shown as-is.
func (d Decision) Render() bool {
	return d.State != StatePending && d.RedirectTo == ""
}

// Rule restricts a destination to a set of roles. A Rule with no roles marks
// the destination as public.
type Rule struct {
	Destination  string
	AllowedRoles []Role
}

// Public returns a rule with no role restriction.
func Public(destination string) Rule {
	return Rule{Destination: destination}
}

// Restrict returns a rule limiting destination to roles.
func Restrict(destination string, roles ...Role) Rule {
	return Rule{Destination: destination, AllowedRoles: roles}
}

type policyEntry struct {
	destination string
	public      bool
	allowed     map[Role]struct{}
}

// AccessPolicy is a static destination → allowed-role table. Destinations
// match by path segment prefix; the longest matching entry wins and an
// unmatched destination is public.
type AccessPolicy struct {
	entries []policyEntry
}

// NewAccessPolicy validates rules and builds the lookup table.
func NewAccessPolicy(rules ...Rule) (*AccessPolicy, error) {
	seen := make(map[string]struct{}, len(rules))
	p := &AccessPolicy{entries: make([]policyEntry, 0, len(rules))}

	for _, r := range rules {
		dest := normalizePath(r.Destination)
		if _, dup := seen[dest]; dup {
			return nil, fmt.Errorf("%w: duplicate destination %q", ErrInvalidPolicy, dest)
		}
		seen[dest] = struct{}{}

		entry := policyEntry{destination: dest, public: len(r.AllowedRoles) == 0}
		if !entry.public {
			entry.allowed = make(map[Role]struct{}, len(r.AllowedRoles))
			for _, role := range r.AllowedRoles {
				if !role.Known() {
					return nil, fmt.Errorf("%w: unknown role %q for %q", ErrInvalidPolicy, role, dest)
				}
				entry.allowed[role] = struct{}{}
			}
		}
		p.entries = append(p.entries, entry)
	}

	// Longest destination first so the first match is the most specific.
	sort.SliceStable(p.entries, func(i, j int) bool {
		return len(p.entries[i].destination) > len(p.entries[j].destination)
	})
	return p, nil
}

// MustAccessPolicy is NewAccessPolicy for static tables known to be valid.
func MustAccessPolicy(rules ...Rule) *AccessPolicy {
	p, err := NewAccessPolicy(rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Requirement returns the allowed roles for destination and whether the
// destination is restricted at all.
func (p *AccessPolicy) Requirement(destination string) (allowed map[Role]struct{}, restricted bool) {
	dest := normalizePath(destination)
	for _, e := range p.entries {
		if matchesPrefix(dest, e.destination) {
			if e.public {
				return nil, false
			}
			return e.allowed, true
		}
	}
	return nil, false
}

// Allows reports whether role may view destination.
func (p *AccessPolicy) Allows(role Role, destination string) bool {
	allowed, restricted := p.Requirement(destination)
	if !restricted {
		return true
	}
	_, ok := allowed[role]
	return ok
}

// DefaultAccessPolicy is the portal's destination table.
func DefaultAccessPolicy() *AccessPolicy {
	return MustAccessPolicy(
		Public("/"),
		Public(LoginDestination),
		Public("/register"),
		Public("/forgot-password"),
		Public(UnauthorizedDestination),
		Public("/rooms"),
		Public("/rules"),
		Restrict("/admin", RoleAdmin),
		Restrict("/owner", RoleOwner),
		Restrict("/manager", RoleManager),
		Restrict("/accountant", RoleAccountant),
		Restrict("/tenant", RoleTenant),
		Restrict("/contracts", RoleAdmin, RoleOwner, RoleManager),
		Restrict("/accounts", RoleAdmin, RoleManager),
		Restrict("/invoices", RoleAdmin, RoleOwner, RoleAccountant),
		Restrict("/profile", Roles...),
	)
}

func normalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

func matchesPrefix(dest, prefix string) bool {
	if prefix == "/" {
		return dest == "/"
	}
	return dest == prefix || strings.HasPrefix(dest, prefix+"/")
}
