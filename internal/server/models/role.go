package models

import "github.com/lostgates/identity/internal/common"

// Role governs which actions a user may perform. It is assigned at
// registration and immutable through the normal API surface.
type Role string

const (
	RoleDev    Role = "Dev"
	RoleTester Role = "Tester"
	RoleAdmin  Role = "Admin"
)

// ParseRole validates a submitted role value. An empty value defaults to
// Tester; anything else outside the three known roles is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDev, RoleTester, RoleAdmin:
		return Role(s), nil
	case "":
		return RoleTester, nil
	default:
		return "", common.ErrorInvalidRole
	}
}
