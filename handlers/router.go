package handlers

import (
	"github.com/edulinkhq/crm_backend/middlewares"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API surface. Everything except login sits behind
// the auth guard; the loaders run per request for the batched lookups.
func RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/login", Login)

	api := r.Group("/api")
	api.Use(middlewares.RequireAuth(), middlewares.LoaderMiddleware())
	{
		api.POST("/users", RegisterUser)

		api.POST("/clients", CreateClient)
		api.GET("/clients", ListClients)
		api.GET("/clients/:id", GetClient)
		api.DELETE("/clients/:id", ArchiveClient)
		api.GET("/clients/:id/payments", ListClientPayments)
		api.GET("/clients/:id/product-payments", ListClientProductPayments)

		api.POST("/payments", SavePayment)
		api.POST("/product-payments", SaveProductPayment)

		api.GET("/dashboard", GetDashboardStats)

		api.GET("/leaderboard", GetLeaderboard)
		api.POST("/leaderboard/targets", SetLeaderboardTarget)
		api.GET("/leaderboard/export", ExportLeaderboard)
	}
}
