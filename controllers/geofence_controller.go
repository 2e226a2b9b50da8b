package controllers

import (
	"github.com/gin-gonic/gin"

	"tourguard/models"
	"tourguard/services"
	"tourguard/utils"
)

type GeofenceController struct {
	geofenceService    *services.GeofenceService
	safetyScoreService *services.SafetyScoreService
}

func NewGeofenceController(geofenceService *services.GeofenceService, safetyScoreService *services.SafetyScoreService) *GeofenceController {
	return &GeofenceController{
		geofenceService:    geofenceService,
		safetyScoreService: safetyScoreService,
	}
}

// CreateGeofence adds a zone to the caller's profile
func (gc *GeofenceController) CreateGeofence(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.CreateGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid geofence data")
		return
	}

	geofence, err := gc.geofenceService.CreateGeofence(c.Request.Context(), identity.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Geofence created successfully", geofence)
}

func (gc *GeofenceController) ListGeofences(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	geofences, err := gc.geofenceService.ListGeofences(c.Request.Context(), identity.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Geofences retrieved successfully", geofences)
}

// GetSafetyScore returns the caller's score, or another tourist's for
// authority roles via ?userId=
func (gc *GeofenceController) GetSafetyScore(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	score, err := gc.safetyScoreService.GetSafetyScore(c.Request.Context(), identity, c.Query("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Safety score retrieved successfully", score)
}
