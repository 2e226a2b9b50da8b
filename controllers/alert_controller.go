package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tourguard/models"
	"tourguard/services"
	"tourguard/utils"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type AlertController struct {
	alertService *services.AlertService
}

func NewAlertController(alertService *services.AlertService) *AlertController {
	return &AlertController{
		alertService: alertService,
	}
}

// ==================== ALERT ENDPOINTS ====================

// CreateAlert raises an alert for the caller
func (ac *AlertController) CreateAlert(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid alert data")
		return
	}

	alert, err := ac.alertService.CreateAlert(c.Request.Context(), identity.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Alert created successfully", alert)
}

// TriggerPanic raises a critical panic alert at the caller's position
func (ac *AlertController) TriggerPanic(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.PanicAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid panic alert data")
		return
	}

	alert, err := ac.alertService.CreatePanicAlert(c.Request.Context(), identity.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Panic alert sent", alert)
}

func (ac *AlertController) GetAlert(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	alert, err := ac.alertService.GetAlert(c.Request.Context(), identity, c.Param("alertId"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Alert retrieved successfully", alert)
}

// ListAlerts pages through alerts visible to the caller
func (ac *AlertController) ListAlerts(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil {
		utils.BadRequestResponse(c, "page must be an integer")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil {
		utils.BadRequestResponse(c, "limit must be an integer")
		return
	}

	query := models.AlertListQuery{
		SubjectID: c.Query("subjectId"),
		Status:    models.AlertStatus(c.Query("status")),
		Type:      models.AlertType(c.Query("type")),
		Severity:  models.AlertSeverity(c.Query("severity")),
		Page:      page,
		Limit:     limit,
	}

	result, err := ac.alertService.ListAlerts(c.Request.Context(), identity, query)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Alerts retrieved successfully", result.Alerts,
		utils.CreatePaginationMeta(result.Page, result.Limit, result.Total))
}

// UpdateAlertStatus moves an alert through its lifecycle
func (ac *AlertController) UpdateAlertStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid status update")
		return
	}

	alert, err := ac.alertService.TransitionStatus(c.Request.Context(), identity, c.Param("alertId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Alert status updated", alert)
}
