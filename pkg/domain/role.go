package domain

import dErrors "medivault/pkg/domain-errors"

// Role is the closed set of actor categories. A role is fixed for the lifetime
// of a session: it is snapshotted into the session token at login and never
// looked up again.
//
// Usage: construct via ParseRole at trust boundaries to enforce the allowlist;
// direct casting bypasses validation.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClinician Role = "clinician"
	RoleFrontdesk Role = "frontdesk"
)

// Roles lists every supported role. Policy-table totality is validated against
// this slice, so adding a role here forces a matching policy row at startup.
var Roles = []Role{RoleAdmin, RoleClinician, RoleFrontdesk}

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleClinician: true,
	RoleFrontdesk: true,
}

// ParseRole constructs a Role from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
