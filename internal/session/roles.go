package session

// UserRole is the role tag the API attaches to a user profile.
type UserRole = string

const (
	// RoleCustomer is the default role for storefront signups.
	RoleCustomer UserRole = "customer"
	// RoleAdmin can manage users and order statuses.
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles.
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	default:
		return false
	}
}

// HasRole reports whether the session user's role is a member of the set.
// An anonymous session never matches.
func (s *Session) HasRole(roles ...UserRole) bool {
	if s.user == nil {
		return false
	}
	for _, role := range roles {
		if s.user.Role == role {
			return true
		}
	}
	return false
}
