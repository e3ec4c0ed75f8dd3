package auth

import "slices"

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermDeviceRead       Permission = "device:read"
	PermDeviceOperate    Permission = "device:operate"
	PermDeviceConfigure  Permission = "device:configure"
	PermSimulationRead   Permission = "simulation:read"
	PermSimulationManage Permission = "simulation:manage"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermDeviceRead,
		PermSimulationRead,
	},
	RoleOperator: {
		PermDeviceRead,
		PermDeviceOperate,
		PermDeviceConfigure,
		PermSimulationRead,
		PermSimulationManage,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	return slices.Contains(rolePermissions[role], perm)
}

// PermissionsForRole returns a copy of the role's permissions, or nil for
// an unknown role.
func PermissionsForRole(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	return slices.Clone(perms)
}
