package controllers

import (
	"github.com/gin-gonic/gin"

	"tourguard/models"
	"tourguard/services"
	"tourguard/utils"
)

type SensorController struct {
	sensorService *services.SensorService
}

func NewSensorController(sensorService *services.SensorService) *SensorController {
	return &SensorController{
		sensorService: sensorService,
	}
}

// CheckActivity classifies a window of motion samples from the caller's phone
func (sc *SensorController) CheckActivity(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.ActivityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid activity data")
		return
	}

	result, err := sc.sensorService.CheckActivity(c.Request.Context(), identity.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Activity checked", result)
}

// CheckAudio runs keyword spotting over an audio clip from the caller's phone
func (sc *SensorController) CheckAudio(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.AudioCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid audio data")
		return
	}

	result, err := sc.sensorService.CheckAudio(c.Request.Context(), identity.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Audio checked", result)
}
