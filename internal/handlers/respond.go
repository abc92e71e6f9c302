package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Error codes shared by every handler. The envelope shape is part of the
// client contract: {success:false, error:CODE, message:"..."}.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeInvalidID   = "INVALID_ID"
	codeNotFound    = "NOT_FOUND"
	codeDuplicate   = "DUPLICATE_EMAIL"
	codeFetchError  = "FETCH_ERROR"
	codeCreateError = "CREATE_ERROR"
	codeUpdateError = "UPDATE_ERROR"
	codeDeleteError = "DELETE_ERROR"
	codeStatsError  = "STATS_ERROR"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondList(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"total":   total,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// parseIDParam extracts the numeric :id path parameter, answering 400
// INVALID_ID itself when the value is not a positive integer.
func parseIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, codeInvalidID, "Invalid ID in path")
		return 0, false
	}
	return id, true
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}

func validDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func validClock(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}
