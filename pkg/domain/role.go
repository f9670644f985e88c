package domain

import dErrors "opptak/pkg/domain-errors"

// Role identifies who is acting on an application. Guards in the state
// machine and HTTP middleware both consume it.
type Role string

const (
	RoleGuardian     Role = "guardian"
	RoleCaseworker   Role = "caseworker"
	RoleAdmin        Role = "admin"
	RoleKindergarten Role = "kindergarten_staff"
	RoleDistrict     Role = "district_admin"
)

var validRoles = map[Role]bool{
	RoleGuardian:     true,
	RoleCaseworker:   true,
	RoleAdmin:        true,
	RoleKindergarten: true,
	RoleDistrict:     true,
}

// ParseRole constructs a Role from external input (JWT claims, requests).
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

// CanProcessApplications reports whether the role may drive the review
// workflow (everything past the guardian's own submission).
func (r Role) CanProcessApplications() bool {
	return r == RoleCaseworker || r == RoleAdmin
}
