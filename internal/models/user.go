package models

import "time"

type Role string

const (
	RoleDiner      Role = "diner"
	RoleFranchisee Role = "franchisee"
	RoleAdmin      Role = "admin"
)

// RoleAssignment links a user to a role. For the franchisee role ObjectID
// holds the franchise id the user administers; for global roles it is empty.
type RoleAssignment struct {
	Role     Role   `json:"role"`
	ObjectID string `json:"objectId,omitempty"`
}

type User struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	PasswordHash []byte           `json:"-"`
	Roles        []RoleAssignment `json:"roles"`
	CreatedAt    time.Time        `json:"-"`
	UpdatedAt    time.Time        `json:"-"`
}

func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}
