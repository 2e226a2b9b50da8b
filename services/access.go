package services

import (
	"tourguard/models"
)

// CanRead reports whether actor may see records about subjectID. Tourists
// only see their own; every other role sees everything.
func CanRead(actor models.UserIdentity, subjectID string) bool {
	return actor.Role != models.RoleTourist || actor.ID == subjectID
}

// CanWrite uses the same rule as CanRead.
func CanWrite(actor models.UserIdentity, subjectID string) bool {
	return CanRead(actor, subjectID)
}

// CanClaim reports whether role may become the assignee of an unassigned alert.
func CanClaim(role models.Role) bool {
	return role.IsAuthority()
}
