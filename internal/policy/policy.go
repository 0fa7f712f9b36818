// Package policy holds the pure authorization predicates gating mutation
// endpoints. Policies only answer yes or no; routes attach the 403 status and
// an action-specific message on denial.
package policy

import "slicehub/api/internal/models"

func IsAdmin(p models.Principal) bool {
	return p.HasRole(models.RoleAdmin)
}

// IsSelfOrAdmin allows a user to act on their own record, and admins to act
// on anyone's.
func IsSelfOrAdmin(p models.Principal, targetUserID string) bool {
	return p.ID == targetUserID || IsAdmin(p)
}

// IsFranchiseAdminOrAdmin allows global admins and users listed in the
// franchise's admin set.
func IsFranchiseAdminOrAdmin(p models.Principal, franchise models.Franchise) bool {
	return IsAdmin(p) || franchise.HasAdmin(p.ID)
}
