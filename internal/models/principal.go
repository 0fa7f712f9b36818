package models

// Principal is the authenticated identity derived from a verified token.
// It is built fresh for each request and never persisted or mutated.
type Principal struct {
	ID    string
	Name  string
	Email string
	Roles []RoleAssignment
}

func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}
