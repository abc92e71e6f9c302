package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"festarent/internal/database"
	"festarent/internal/logger"
	"festarent/internal/models"

	"github.com/gin-gonic/gin"
)

type createTransactionRequest struct {
	Description       string  `json:"description"`
	Type              string  `json:"type"`
	AmountCents       int64   `json:"amount_cents"`
	Category          string  `json:"category"`
	Status            string  `json:"status"`
	TransactionDate   string  `json:"transaction_date"`
	PartyID           *int    `json:"party_id"`
	ClientID          *int    `json:"client_id"`
	ToyID             *int    `json:"toy_id"`
	InstallmentNumber *int    `json:"installment_number"`
	InstallmentTotal  *int    `json:"installment_total"`
	Notes             *string `json:"notes"`
}

type updateTransactionRequest struct {
	Description       *string `json:"description"`
	Type              *string `json:"type"`
	AmountCents       *int64  `json:"amount_cents"`
	Category          *string `json:"category"`
	Status            *string `json:"status"`
	TransactionDate   *string `json:"transaction_date"`
	PartyID           *int    `json:"party_id"`
	ClientID          *int    `json:"client_id"`
	ToyID             *int    `json:"toy_id"`
	InstallmentNumber *int    `json:"installment_number"`
	InstallmentTotal  *int    `json:"installment_total"`
	Notes             *string `json:"notes"`
}

func handleListTransactions(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	filters := database.TransactionFilters{
		Type:      c.Query("type"),
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}

	for param, target := range map[string]*int{
		"party_id":  &filters.PartyID,
		"client_id": &filters.ClientID,
		"toy_id":    &filters.ToyID,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, codeValidation, param+" must be a positive integer")
			return
		}
		*target = id
	}

	if filters.Type != "" && !models.ValidEnum(filters.Type, models.TransactionTypes) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown transaction type")
		return
	}
	if filters.Status != "" && !models.ValidEnum(filters.Status, models.TransactionStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown transaction status")
		return
	}

	transactions, err := database.ListTransactions(db, filters)
	if err != nil {
		logger.Error("Failed to list transactions", "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch transactions")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	respondList(c, transactions, len(transactions))
}

func handleGetTransaction(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	transactionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	transaction, err := database.GetTransaction(db, transactionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Transaction not found")
			return
		}
		logger.Error("Failed to get transaction", "transaction_id", transactionID, "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch transaction")
		return
	}

	respondData(c, http.StatusOK, transaction)
}

func handleCreateTransaction(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Description == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Transaction description is required")
		return
	}
	if !models.ValidEnum(req.Type, models.TransactionTypes) {
		respondError(c, http.StatusBadRequest, codeValidation, "Transaction type must be income or expense")
		return
	}
	if req.AmountCents <= 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Transaction amount must be positive")
		return
	}
	if req.Status != "" && !models.ValidEnum(req.Status, models.TransactionStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown transaction status")
		return
	}
	if !validDate(req.TransactionDate) {
		respondError(c, http.StatusBadRequest, codeValidation, "transaction_date must be YYYY-MM-DD")
		return
	}
	if !verifyTransactionLinks(c, db, req.PartyID, req.ClientID, req.ToyID) {
		return
	}

	transaction, err := database.CreateTransaction(db, models.Transaction{
		Description:       req.Description,
		Type:              req.Type,
		AmountCents:       req.AmountCents,
		Category:          req.Category,
		Status:            req.Status,
		TransactionDate:   req.TransactionDate,
		PartyID:           req.PartyID,
		ClientID:          req.ClientID,
		ToyID:             req.ToyID,
		InstallmentNumber: req.InstallmentNumber,
		InstallmentTotal:  req.InstallmentTotal,
		Notes:             req.Notes,
	})
	if err != nil {
		logger.Error("Failed to create transaction", "description", req.Description, "error", err)
		respondError(c, http.StatusInternalServerError, codeCreateError, "Failed to create transaction")
		return
	}

	respondData(c, http.StatusCreated, transaction)
}

func handleUpdateTransaction(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	transactionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Description != nil && *req.Description == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Transaction description cannot be empty")
		return
	}
	if req.Type != nil && !models.ValidEnum(*req.Type, models.TransactionTypes) {
		respondError(c, http.StatusBadRequest, codeValidation, "Transaction type must be income or expense")
		return
	}
	if req.AmountCents != nil && *req.AmountCents <= 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Transaction amount must be positive")
		return
	}
	if req.Status != nil && !models.ValidEnum(*req.Status, models.TransactionStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown transaction status")
		return
	}
	if req.TransactionDate != nil && !validDate(*req.TransactionDate) {
		respondError(c, http.StatusBadRequest, codeValidation, "transaction_date must be YYYY-MM-DD")
		return
	}
	if !verifyTransactionLinks(c, db, req.PartyID, req.ClientID, req.ToyID) {
		return
	}

	transaction, err := database.UpdateTransaction(db, transactionID, database.TransactionPatch{
		Description:       req.Description,
		Type:              req.Type,
		AmountCents:       req.AmountCents,
		Category:          req.Category,
		Status:            req.Status,
		TransactionDate:   req.TransactionDate,
		PartyID:           req.PartyID,
		ClientID:          req.ClientID,
		ToyID:             req.ToyID,
		InstallmentNumber: req.InstallmentNumber,
		InstallmentTotal:  req.InstallmentTotal,
		Notes:             req.Notes,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Transaction not found")
			return
		}
		logger.Error("Failed to update transaction", "transaction_id", transactionID, "error", err)
		respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update transaction")
		return
	}

	respondData(c, http.StatusOK, transaction)
}

func handleDeleteTransaction(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	transactionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := database.DeleteTransaction(db, transactionID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Transaction not found")
			return
		}
		logger.Error("Failed to delete transaction", "transaction_id", transactionID, "error", err)
		respondError(c, http.StatusInternalServerError, codeDeleteError, "Failed to delete transaction")
		return
	}

	respondData(c, http.StatusOK, nil)
}

func handleTransactionStats(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if (startDate != "" && !validDate(startDate)) || (endDate != "" && !validDate(endDate)) {
		respondError(c, http.StatusBadRequest, codeValidation, "Dates must be YYYY-MM-DD")
		return
	}

	stats, err := database.GetTransactionStats(db, startDate, endDate)
	if err != nil {
		logger.Error("Failed to get transaction stats", "error", err)
		respondError(c, http.StatusInternalServerError, codeStatsError, "Failed to fetch transaction stats")
		return
	}

	respondData(c, http.StatusOK, stats)
}

// verifyTransactionLinks checks that each referenced record exists before the
// insert, answering 400 itself when one is missing.
func verifyTransactionLinks(c *gin.Context, db *sql.DB, partyID, clientID, toyID *int) bool {
	if partyID != nil {
		if _, err := database.GetParty(db, *partyID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(c, http.StatusBadRequest, codeValidation, "Party does not exist")
				return false
			}
			logger.Error("Failed to verify transaction party", "party_id", *partyID, "error", err)
			respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to verify linked records")
			return false
		}
	}
	if clientID != nil {
		if _, err := database.GetClient(db, *clientID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(c, http.StatusBadRequest, codeValidation, "Client does not exist")
				return false
			}
			logger.Error("Failed to verify transaction client", "client_id", *clientID, "error", err)
			respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to verify linked records")
			return false
		}
	}
	if toyID != nil {
		if _, err := database.GetToy(db, *toyID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(c, http.StatusBadRequest, codeValidation, "Toy does not exist")
				return false
			}
			logger.Error("Failed to verify transaction toy", "toy_id", *toyID, "error", err)
			respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to verify linked records")
			return false
		}
	}
	return true
}
