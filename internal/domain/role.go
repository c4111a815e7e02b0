package domain

// Role is the privilege level carried in an account's claims.
type Role string

// Role constants. RoleNone is an account with no privileges.
const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// ParseRole maps a stored role string onto a Role. Unknown strings mean none.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleNone
	}
}

// String returns the wire form of the role.
func (r Role) String() string { return string(r) }
