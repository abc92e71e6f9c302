package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"festarent/internal/database"
	"festarent/internal/logger"

	"github.com/gin-gonic/gin"
)

func handleDashboard(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	months, err := strconv.Atoi(c.DefaultQuery("months", "6"))
	if err != nil || months < 1 || months > 36 {
		respondError(c, http.StatusBadRequest, codeValidation, "months must be between 1 and 36")
		return
	}

	dashboard, err := database.GetDashboard(db, months, time.Now())
	if err != nil {
		logger.Error("Failed to build dashboard", "error", err)
		respondError(c, http.StatusInternalServerError, codeStatsError, "Failed to fetch dashboard")
		return
	}

	respondData(c, http.StatusOK, dashboard)
}
