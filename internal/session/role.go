package session

// Role is the closed access classification the backend assigns to a user.
// Screen gating only ever compares Role values, never raw strings.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleStaff   Role = "Staff"
)

// AllRoles lists every known role, most privileged first.
var AllRoles = []Role{RoleAdmin, RoleManager, RoleStaff}

// ParseRole maps a backend role name onto the closed set. Unknown or missing
// names fall back to the least-privileged role.
func ParseRole(name string) Role {
	switch Role(name) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	case RoleStaff:
		return RoleStaff
	default:
		return RoleStaff
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}
