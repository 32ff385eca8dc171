package domain

// Role is the closed set of portal roles. Values outside the set are
// representable so that tampered or outdated records can be denied.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleOwner      Role = "owner"
	RoleTenant     Role = "tenant"
	RoleAccountant Role = "accountant"
)

// Roles lists every known role in a stable order.
var Roles = []Role{RoleAdmin, RoleManager, RoleOwner, RoleTenant, RoleAccountant}

// Known reports whether r is one of the five portal roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOwner, RoleTenant, RoleAccountant:
		return true
	}
	return false
}

// Home returns the dashboard a role lands on after login. Unknown roles
// land on the unauthorized page.
func (r Role) Home() string {
	if !r.Known() {
		return UnauthorizedDestination
	}
	return "/" + string(r)
}

// Identity is the signed-in principal. Profile fields stay nil until the
// user completes profile setup.
type Identity struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Fullname    *string `json:"fullname,omitempty"`
	Role        Role    `json:"role"`
	CitizenID   *string `json:"cccd,omitempty"`
	Address     *string `json:"address,omitempty"`
	DateOfBirth *string `json:"dob,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// Clone returns a deep copy so snapshots never share pointers with the store.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Fullname = cloneString(i.Fullname)
	c.CitizenID = cloneString(i.CitizenID)
	c.Address = cloneString(i.Address)
	c.DateOfBirth = cloneString(i.DateOfBirth)
	c.Gender = cloneString(i.Gender)
	c.Phone = cloneString(i.Phone)
	return &c
}

// DisplayName prefers the full name and falls back to the email.
func (i *Identity) DisplayName() string {
	if i.Fullname != nil && *i.Fullname != "" {
		return *i.Fullname
	}
	return i.Email
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// untouched by the server.
type ProfileUpdate struct {
	Fullname    *string `json:"fullname,omitempty"`
	CitizenID   *string `json:"cccd,omitempty"`
	Address     *string `json:"address,omitempty"`
	DateOfBirth *string `json:"dob,omitempty"`
	Gender      *string `json:"gender,omitempty"`
}

// Registration describes an account created by staff.
type Registration struct {
	Username    string
	PhoneNumber string
	Email       string
	Password    string
	Role        Role
}
