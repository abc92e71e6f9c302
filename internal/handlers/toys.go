package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"festarent/internal/database"
	"festarent/internal/logger"
	"festarent/internal/models"

	"github.com/gin-gonic/gin"
)

type createToyRequest struct {
	Name               string  `json:"name"`
	Category           string  `json:"category"`
	Status             string  `json:"status"`
	Condition          string  `json:"condition"`
	DailyRateCents     int64   `json:"daily_rate_cents"`
	ValueCents         int64   `json:"value_cents"`
	TotalQuantity      int     `json:"total_quantity"`
	AvailableQuantity  *int    `json:"available_quantity"`
	PurchaseDate       *string `json:"purchase_date"`
	PurchasePriceCents *int64  `json:"purchase_price_cents"`
	InstallmentCount   *int    `json:"installment_count"`
}

type updateToyRequest struct {
	Name               *string `json:"name"`
	Category           *string `json:"category"`
	Status             *string `json:"status"`
	Condition          *string `json:"condition"`
	DailyRateCents     *int64  `json:"daily_rate_cents"`
	ValueCents         *int64  `json:"value_cents"`
	TotalQuantity      *int    `json:"total_quantity"`
	AvailableQuantity  *int    `json:"available_quantity"`
	PurchaseDate       *string `json:"purchase_date"`
	PurchasePriceCents *int64  `json:"purchase_price_cents"`
	InstallmentCount   *int    `json:"installment_count"`
}

func handleListToys(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	filters := database.ToyFilters{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	if filters.Status != "" && !models.ValidEnum(filters.Status, models.ToyStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown toy status")
		return
	}

	toys, err := database.ListToys(db, filters)
	if err != nil {
		logger.Error("Failed to list toys", "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch toys")
		return
	}
	if toys == nil {
		toys = []models.Toy{}
	}

	respondList(c, toys, len(toys))
}

func handleGetToy(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	toyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	toy, err := database.GetToy(db, toyID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Toy not found")
			return
		}
		logger.Error("Failed to get toy", "toy_id", toyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch toy")
		return
	}

	respondData(c, http.StatusOK, toy)
}

func handleCreateToy(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	var req createToyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Toy name is required")
		return
	}
	if req.Status != "" && !models.ValidEnum(req.Status, models.ToyStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown toy status")
		return
	}
	if req.DailyRateCents < 0 || req.ValueCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Amounts cannot be negative")
		return
	}
	if req.TotalQuantity < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Total quantity cannot be negative")
		return
	}
	if req.PurchaseDate != nil && !validDate(*req.PurchaseDate) {
		respondError(c, http.StatusBadRequest, codeValidation, "Purchase date must be YYYY-MM-DD")
		return
	}

	totalQuantity := req.TotalQuantity
	if totalQuantity == 0 {
		totalQuantity = 1
	}
	availableQuantity := totalQuantity
	if req.AvailableQuantity != nil {
		availableQuantity = *req.AvailableQuantity
	}
	if availableQuantity < 0 || availableQuantity > totalQuantity {
		respondError(c, http.StatusBadRequest, codeValidation, "Available quantity must be between 0 and total quantity")
		return
	}

	toy, err := database.CreateToy(db, models.Toy{
		Name:               req.Name,
		Category:           req.Category,
		Status:             req.Status,
		Condition:          req.Condition,
		DailyRateCents:     req.DailyRateCents,
		ValueCents:         req.ValueCents,
		TotalQuantity:      totalQuantity,
		AvailableQuantity:  availableQuantity,
		PurchaseDate:       req.PurchaseDate,
		PurchasePriceCents: req.PurchasePriceCents,
		InstallmentCount:   req.InstallmentCount,
	})
	if err != nil {
		if isCheckViolation(err) {
			respondError(c, http.StatusBadRequest, codeValidation, "Toy quantities are out of range")
			return
		}
		logger.Error("Failed to create toy", "name", req.Name, "error", err)
		respondError(c, http.StatusInternalServerError, codeCreateError, "Failed to create toy")
		return
	}

	respondData(c, http.StatusCreated, toy)
}

func handleUpdateToy(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	toyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateToyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Name != nil && *req.Name == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Toy name cannot be empty")
		return
	}
	if req.Status != nil && !models.ValidEnum(*req.Status, models.ToyStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown toy status")
		return
	}
	if req.DailyRateCents != nil && *req.DailyRateCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Daily rate cannot be negative")
		return
	}
	if req.ValueCents != nil && *req.ValueCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Value cannot be negative")
		return
	}
	if req.PurchaseDate != nil && !validDate(*req.PurchaseDate) {
		respondError(c, http.StatusBadRequest, codeValidation, "Purchase date must be YYYY-MM-DD")
		return
	}
	if req.TotalQuantity != nil && req.AvailableQuantity != nil &&
		(*req.AvailableQuantity < 0 || *req.AvailableQuantity > *req.TotalQuantity) {
		respondError(c, http.StatusBadRequest, codeValidation, "Available quantity must be between 0 and total quantity")
		return
	}

	toy, err := database.UpdateToy(db, toyID, database.ToyPatch{
		Name:               req.Name,
		Category:           req.Category,
		Status:             req.Status,
		Condition:          req.Condition,
		DailyRateCents:     req.DailyRateCents,
		ValueCents:         req.ValueCents,
		TotalQuantity:      req.TotalQuantity,
		AvailableQuantity:  req.AvailableQuantity,
		PurchaseDate:       req.PurchaseDate,
		PurchasePriceCents: req.PurchasePriceCents,
		InstallmentCount:   req.InstallmentCount,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Toy not found")
			return
		}
		if isCheckViolation(err) {
			respondError(c, http.StatusBadRequest, codeValidation, "Toy quantities are out of range")
			return
		}
		logger.Error("Failed to update toy", "toy_id", toyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update toy")
		return
	}

	respondData(c, http.StatusOK, toy)
}

func handleDeleteToy(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	toyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := database.DeleteToy(db, toyID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Toy not found")
			return
		}
		logger.Error("Failed to delete toy", "toy_id", toyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeDeleteError, "Failed to delete toy")
		return
	}

	respondData(c, http.StatusOK, nil)
}

// handleAvailableToys answers GET /api/toys/available. Accepts either a
// single ?date= or a ?startDate=&endDate= range.
func handleAvailableToys(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if date := c.Query("date"); date != "" {
		startDate = date
		endDate = date
	}

	if startDate == "" || endDate == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "A date or a startDate/endDate range is required")
		return
	}
	if !validDate(startDate) || !validDate(endDate) {
		respondError(c, http.StatusBadRequest, codeValidation, "Dates must be YYYY-MM-DD")
		return
	}
	if endDate < startDate {
		respondError(c, http.StatusBadRequest, codeValidation, "endDate cannot precede startDate")
		return
	}

	toys, err := database.ListAvailableToys(db, startDate, endDate)
	if err != nil {
		logger.Error("Failed to list available toys", "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch available toys")
		return
	}
	if toys == nil {
		toys = []models.Toy{}
	}

	respondList(c, toys, len(toys))
}

func handleToyStats(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	stats, err := database.GetToyStats(db)
	if err != nil {
		logger.Error("Failed to get toy stats", "error", err)
		respondError(c, http.StatusInternalServerError, codeStatsError, "Failed to fetch toy stats")
		return
	}

	respondData(c, http.StatusOK, stats)
}
