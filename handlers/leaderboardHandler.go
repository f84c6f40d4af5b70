package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/edulinkhq/crm_backend/models"
	"github.com/edulinkhq/crm_backend/models/reports"
	"github.com/gin-gonic/gin"
)

func leaderboardPeriod(c *gin.Context) (int, int, bool) {
	now := time.Now()
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return 0, 0, false
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, 0, false
	}
	return month, year, true
}

func GetLeaderboard(c *gin.Context) {
	month, year, ok := leaderboardPeriod(c)
	if !ok {
		return
	}

	rows, err := reports.GetLeaderboard(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func SetLeaderboardTarget(c *gin.Context) {
	var input models.NewLeaderboardTarget
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := models.SetLeaderboardTarget(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if result.Action == models.ActionCreated {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

func ExportLeaderboard(c *gin.Context) {
	month, year, ok := leaderboardPeriod(c)
	if !ok {
		return
	}

	data, err := reports.ExportLeaderboardExcel(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard-%d-%02d.xlsx", year, month)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
