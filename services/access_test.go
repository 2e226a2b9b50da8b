package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tourguard/models"
)

func TestAccessGuard(t *testing.T) {
	tourist := models.UserIdentity{ID: "t-1", Role: models.RoleTourist}

	assert.True(t, CanRead(tourist, "t-1"))
	assert.False(t, CanRead(tourist, "t-2"))
	assert.False(t, CanWrite(tourist, "t-2"))

	for _, role := range []models.Role{models.RolePolice, models.RoleAdmin, models.RoleTourismDept} {
		actor := models.UserIdentity{ID: "a-1", Role: role}
		assert.True(t, CanRead(actor, "t-2"), role)
		assert.True(t, CanWrite(actor, "t-2"), role)
		assert.True(t, CanClaim(role), role)
	}

	assert.False(t, CanClaim(models.RoleTourist))
	assert.False(t, CanClaim(models.Role("guest")))
}
