package controllers

import (
	"github.com/gin-gonic/gin"

	"tourguard/models"
	"tourguard/utils"
)

func requireIdentity(c *gin.Context) (models.UserIdentity, bool) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return models.UserIdentity{}, false
	}
	return identity, true
}

// respondError writes the error envelope and records err for the request log.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	utils.HandleServiceError(c, err)
}
