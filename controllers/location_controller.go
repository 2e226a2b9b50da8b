package controllers

import (
	"github.com/gin-gonic/gin"

	"tourguard/models"
	"tourguard/services"
	"tourguard/utils"
)

type LocationController struct {
	locationService *services.LocationService
}

func NewLocationController(locationService *services.LocationService) *LocationController {
	return &LocationController{
		locationService: locationService,
	}
}

// ==================== TRACKING ENDPOINTS ====================

// UpdateLocation records the caller's position and checks danger zones
func (lc *LocationController) UpdateLocation(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid location data")
		return
	}

	history, err := lc.locationService.RecordLocation(c.Request.Context(), identity.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", models.LocationHistoryResponse{
		UserID:  identity.ID,
		History: history,
		Count:   len(history),
	})
}

// UpdateLocationNMEA records a position from a raw GPS receiver sentence
func (lc *LocationController) UpdateLocationNMEA(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.NMEALocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid NMEA payload")
		return
	}

	history, err := lc.locationService.RecordNMEA(c.Request.Context(), identity.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", models.LocationHistoryResponse{
		UserID:  identity.ID,
		History: history,
		Count:   len(history),
	})
}

// GetLocationHistory returns the last recorded samples, oldest first
func (lc *LocationController) GetLocationHistory(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	history, err := lc.locationService.GetLocationHistory(c.Request.Context(), identity, c.Query("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location history retrieved successfully", history)
}
