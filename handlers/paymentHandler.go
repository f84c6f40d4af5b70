package handlers

import (
	"net/http"
	"strconv"

	"github.com/edulinkhq/crm_backend/models"
	"github.com/gin-gonic/gin"
)

func SavePayment(c *gin.Context) {
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := models.SavePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Action == models.ActionUpdated {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func ListClientPayments(c *gin.Context) {
	clientId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	client, err := models.GetClientById(c.Request.Context(), clientId)
	if err != nil {
		respondError(c, err)
		return
	}
	if !clientVisible(c, client) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	payments, err := models.GetPaymentsByClient(c.Request.Context(), clientId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
