package handlers

import (
	"net/http"
	"strconv"

	"github.com/edulinkhq/crm_backend/models"
	"github.com/gin-gonic/gin"
)

func SaveProductPayment(c *gin.Context) {
	var input models.NewProductPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := models.SaveProductPayment(c.Request.Context(), &input)
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

func ListClientProductPayments(c *gin.Context) {
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

	rows, err := models.GetProductPaymentsByClient(c.Request.Context(), clientId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
