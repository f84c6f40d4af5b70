package handlers

import (
	"net/http"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps the domain error taxonomy onto HTTP statuses: validation
// errors 400, uniqueness conflicts 409, not-found 404, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case utils.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case utils.IsConflictError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case utils.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		config.LogError(config.GetLogger(), "handlers", "respondError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindingError surfaces gin/validator binding failures field by field.
func respondBindingError(c *gin.Context, err error) {
	if _, ok := err.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
