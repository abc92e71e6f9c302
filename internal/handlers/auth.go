package handlers

import (
	"database/sql"
	"net/http"
	"regexp"

	"festarent/internal/database"
	"festarent/internal/logger"

	"github.com/gin-gonic/gin"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleLogin(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Email and password are required")
		return
	}

	user, err := database.AuthenticateUser(db, req.Email, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
		return
	}

	token, err := database.CreateAPIToken(db, user.ID)
	if err != nil {
		logger.Error("Failed to create API token", "user_id", user.ID, "error", err)
		respondError(c, http.StatusInternalServerError, codeCreateError, "Failed to create session token")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"token":           token.Token,
		"organization_id": user.OrganizationID,
		"user":            user,
	})
}

func handleLogout(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	token := c.MustGet("token").(string)

	if err := database.DeleteAPIToken(db, token); err != nil {
		logger.Warn("Failed to revoke token", "token", token, "error", err)
		respondError(c, http.StatusInternalServerError, codeDeleteError, "Failed to revoke token")
		return
	}

	respondData(c, http.StatusOK, nil)
}
