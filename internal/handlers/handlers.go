package handlers

import (
	"database/sql"
	"net/http"

	"festarent/internal/config"
	"festarent/internal/email"
	"festarent/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config, emailService *email.Service) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders(cfg))
	r.Use(middleware.AddDBContext(db))
	r.Use(addEmailServiceContext(emailService))

	r.GET("/health", handleHealth)

	api := r.Group("/api")
	api.POST("/auth/login", middleware.LoginRateLimit(cfg), handleLogin)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(db))
	{
		protected.POST("/auth/logout", handleLogout)

		protected.GET("/clients", handleListClients)
		protected.GET("/clients/stats", handleClientStats)
		protected.GET("/clients/:id", handleGetClient)
		protected.POST("/clients", handleCreateClient)
		protected.PUT("/clients/:id", handleUpdateClient)
		protected.DELETE("/clients/:id", handleDeleteClient)

		protected.GET("/toys", handleListToys)
		protected.GET("/toys/stats", handleToyStats)
		protected.GET("/toys/available", handleAvailableToys)
		protected.GET("/toys/:id", handleGetToy)
		protected.POST("/toys", handleCreateToy)
		protected.PUT("/toys/:id", handleUpdateToy)
		protected.DELETE("/toys/:id", handleDeleteToy)

		protected.GET("/parties", handleListParties)
		protected.GET("/parties/stats", handlePartyStats)
		protected.GET("/parties/:id", handleGetParty)
		protected.POST("/parties", handleCreateParty)
		protected.PUT("/parties/:id", handleUpdateParty)
		protected.PATCH("/parties/:id/status", handleUpdatePartyStatus)
		protected.PATCH("/parties/:id/payment", handleUpdatePartyPayment)
		protected.DELETE("/parties/:id", handleDeleteParty)

		protected.GET("/transactions", handleListTransactions)
		protected.GET("/transactions/stats", handleTransactionStats)
		protected.GET("/transactions/:id", handleGetTransaction)
		protected.POST("/transactions", handleCreateTransaction)
		protected.PUT("/transactions/:id", handleUpdateTransaction)
		protected.DELETE("/transactions/:id", handleDeleteTransaction)

		protected.GET("/dashboard", handleDashboard)
	}
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func addEmailServiceContext(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("email_service", emailService)
		c.Next()
	}
}
