package controllers

import (
	"alertrelay/models"
	"alertrelay/services"
	"alertrelay/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type QueryController struct {
	queryService *services.QueryService
}

func NewQueryController(queryService *services.QueryService) *QueryController {
	return &QueryController{
		queryService: queryService,
	}
}

// GetAlerts returns both alert collections and active tracking sessions
func (qc *QueryController) GetAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, qc.queryService.Alerts(c.Request.Context()))
}

// GetAlertsByKind returns one collection
func (qc *QueryController) GetAlertsByKind(c *gin.Context) {
	kind, ok := models.ParseAlertKind(c.Param("kind"))
	if !ok {
		utils.NotFoundResponse(c, "Alert collection")
		return
	}
	c.JSON(http.StatusOK, qc.queryService.AlertsByKind(c.Request.Context(), kind))
}

func (qc *QueryController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, qc.queryService.Health(c.Request.Context()))
}

func (qc *QueryController) TrackingData(c *gin.Context) {
	c.JSON(http.StatusOK, qc.queryService.TrackingData(c.Request.Context()))
}

func (qc *QueryController) SnippetsList(c *gin.Context) {
	c.JSON(http.StatusOK, qc.queryService.Snippets(c.Request.Context()))
}
