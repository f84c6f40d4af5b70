package handlers

import (
	"net/http"

	"github.com/edulinkhq/crm_backend/models"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, token, err := models.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if utils.IsNotFound(err) || utils.IsValidationError(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// RegisterUser creates counsellor/manager accounts. Admin only.
func RegisterUser(c *gin.Context) {
	ctx := c.Request.Context()
	role, _ := utils.GetRoleFromContext(ctx)
	if models.Role(role) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}

	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := models.CreateUser(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
