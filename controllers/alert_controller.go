package controllers

import (
	"alertrelay/middleware"
	"alertrelay/models"
	"alertrelay/services"
	"alertrelay/utils"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AlertController struct {
	alertService *services.AlertService
}

func NewAlertController(alertService *services.AlertService) *AlertController {
	return &AlertController{
		alertService: alertService,
	}
}

// =================== INGESTION ===================

// SendAlert accepts a camera alert from a sensor
func (ac *AlertController) SendAlert(c *gin.Context) {
	credential := c.GetHeader(middleware.APIKeyHeader)
	if err := ac.alertService.Authenticate(credential, models.AlertKindCamera); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	raw, ok := bindRawFields(c)
	if !ok {
		return
	}

	alert, err := ac.alertService.IngestCamera(c.Request.Context(), credential, raw)
	if err != nil {
		logrus.Errorf("Camera alert ingestion failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertResponse{Success: true, Alert: alert})
}

// SendSOSAlert accepts an SOS alert from a sensor or handset
func (ac *AlertController) SendSOSAlert(c *gin.Context) {
	credential := c.GetHeader(middleware.APIKeyHeader)
	if err := ac.alertService.Authenticate(credential, models.AlertKindSOS); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	raw, ok := bindRawFields(c)
	if !ok {
		return
	}

	alert, err := ac.alertService.IngestSOS(c.Request.Context(), credential, raw)
	if err != nil {
		logrus.Errorf("SOS alert ingestion failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertResponse{Success: true, Alert: alert})
}

// =================== LIFECYCLE ===================

// ResolveAlert marks an alert resolved
func (ac *AlertController) ResolveAlert(c *gin.Context) {
	var req models.ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	alert, err := ac.alertService.Resolve(c.Request.Context(), req.AlertID, req.AlertType)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertResponse{Success: true, Alert: alert})
}

// ClearAlerts empties one or both collections
func (ac *AlertController) ClearAlerts(c *gin.Context) {
	var req models.ClearAlertsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	scope, ok := models.ParseClearScope(req.AlertType)
	if !ok {
		utils.BadRequestResponse(c, "alertType must be camera, sos or all")
		return
	}

	cleared, err := ac.alertService.Clear(c.Request.Context(), scope)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ClearAlertsResponse{Success: true, Cleared: cleared, Type: scope})
}

// bindRawFields reads a flat JSON object. An empty body is an empty record.
func bindRawFields(c *gin.Context) (models.RawFields, bool) {
	raw := models.RawFields{}
	if err := c.ShouldBindJSON(&raw); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid JSON body")
		return nil, false
	}
	if raw == nil {
		raw = models.RawFields{}
	}
	return raw, true
}
