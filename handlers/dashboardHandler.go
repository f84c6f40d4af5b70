package handlers

import (
	"net/http"

	"github.com/edulinkhq/crm_backend/models/reports"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/gin-gonic/gin"
)

func GetDashboardStats(c *gin.Context) {
	filterType := c.DefaultQuery("filter", utils.WindowToday)

	stats, err := reports.GetDashboardStats(c.Request.Context(), filterType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
