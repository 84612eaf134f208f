package account

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "sub-admin"
	RoleUser     Role = "user"
)

// ValidateRole is the explicit allowlist of assignable roles.
func ValidateRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleUser:
		return true
	}
	return false
}

// Privileged roles may approve accounts and assign elevated roles to others.
func (r Role) Privileged() bool { return r == RoleAdmin || r == RoleSubAdmin }

// In reports whether r is one of allowed.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
