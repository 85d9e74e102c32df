// Package policy holds the pure access predicates that gate every API
// operation. The gate sits in front of the lifecycle engine (as HTTP
// middleware), never inside it.
package policy

import "github.com/taskflow/backend/internal/models"

// CanAccess reports whether the user holds one of the required roles.
// An empty role list means any authenticated user.
func CanAccess(u *models.User, roles ...string) bool {
	if u == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsApproved reports whether the user may use the platform. Admins are
// always approved; everyone else waits for an admin to flip the flag.
func IsApproved(u *models.User) bool {
	if u == nil {
		return false
	}
	return u.Role == models.RoleAdmin || u.IsApproved
}
