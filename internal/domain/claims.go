package domain

// Claim keys in an account's custom claim set.
const (
	ClaimRole  = "role"
	ClaimAdmin = "admin"
)

// Claims is the signed claim set attached to an account. It is the only
// authority for access control; the user document's role is informational.
type Claims struct {
	Role  Role
	Admin bool
}

// AdminClaims is the claim set granted to a new admin.
func AdminClaims() Claims { return Claims{Role: RoleAdmin, Admin: true} }

// SuperAdminClaims is the claim set granted by the bootstrap.
func SuperAdminClaims() Claims { return Claims{Role: RoleSuperAdmin, Admin: true} }

// ClaimsForRole returns the claim set a user document with role r should
// carry. RoleNone yields empty claims.
func ClaimsForRole(r Role) Claims {
	switch r {
	case RoleSuperAdmin:
		return SuperAdminClaims()
	case RoleAdmin:
		return AdminClaims()
	default:
		return Claims{}
	}
}

// IsSuperAdmin reports whether the claims carry role superAdmin.
func (c Claims) IsSuperAdmin() bool { return c.Role == RoleSuperAdmin }

// Map renders the claims as the custom claim map stored by the identity
// provider. Empty claims render as an empty map, which clears them.
func (c Claims) Map() map[string]any {
	m := make(map[string]any, 2)
	if c.Role != RoleNone {
		m[ClaimRole] = string(c.Role)
	}
	if c.Admin {
		m[ClaimAdmin] = true
	}
	return m
}

// ClaimsFromMap reads claims from a decoded token or provider claim map.
// Values of the wrong type are ignored.
func ClaimsFromMap(m map[string]any) Claims {
	var c Claims
	if role, ok := m[ClaimRole].(string); ok {
		c.Role = ParseRole(role)
	}
	if admin, ok := m[ClaimAdmin].(bool); ok {
		c.Admin = admin
	}
	return c
}
