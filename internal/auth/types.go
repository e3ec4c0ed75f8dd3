package auth

import "errors"

// Role is the access level carried in a token.
type Role string

const (
	// RoleViewer may read simulator state.
	RoleViewer Role = "viewer"

	// RoleOperator may read and change simulator state.
	RoleOperator Role = "operator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Sentinel errors.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenInvalid       = errors.New("auth: invalid token")
	ErrForbidden          = errors.New("auth: insufficient permissions")
	ErrUnknownRole        = errors.New("auth: unknown role")
)
