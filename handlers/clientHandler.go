package handlers

import (
	"net/http"
	"strconv"

	"github.com/edulinkhq/crm_backend/middlewares"
	"github.com/edulinkhq/crm_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateClient(c *gin.Context) {
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	client, err := models.CreateClient(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func ListClients(c *gin.Context) {
	clients, err := models.GetVisibleClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// clientProjection is the full resolved record callers re-fetch after writes:
// the client plus both ledgers, entities attached.
type clientProjection struct {
	Client          *models.Client           `json:"client"`
	Counsellor      *models.User             `json:"counsellor"`
	Payments        []*models.Payment        `json:"payments"`
	ProductPayments []*models.ProductPayment `json:"product_payments"`
}

func GetClient(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	client, err := models.GetClientById(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !clientVisible(c, client) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	counsellor, err := middlewares.GetCounsellor(ctx, client.CounsellorId)
	if err != nil {
		respondError(c, err)
		return
	}
	payments, err := models.GetPaymentsByClient(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	productPayments, err := models.GetProductPaymentsByClient(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, clientProjection{
		Client:          client,
		Counsellor:      counsellor,
		Payments:        payments,
		ProductPayments: productPayments,
	})
}

func ArchiveClient(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	client, err := models.GetClientById(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !clientVisible(c, client) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := models.ArchiveClient(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": true})
}

// clientVisible re-checks the role scope on single-record reads so a
// counsellor cannot walk ids outside their book.
func clientVisible(c *gin.Context, client *models.Client) bool {
	ids, all, err := models.VisibleCounsellorIds(c.Request.Context())
	if err != nil {
		return false
	}
	if all {
		return true
	}
	for _, id := range ids {
		if id == client.CounsellorId {
			return true
		}
	}
	return false
}
