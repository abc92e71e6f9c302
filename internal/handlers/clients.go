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

type createClientRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Document       *string `json:"document"`
	Phone          *string `json:"phone"`
	SecondaryPhone *string `json:"secondary_phone"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	ZipCode        *string `json:"zip_code"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes"`
}

type updateClientRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Document       *string `json:"document"`
	Phone          *string `json:"phone"`
	SecondaryPhone *string `json:"secondary_phone"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	ZipCode        *string `json:"zip_code"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
}

func handleListClients(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	filters := database.ClientFilters{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	if filters.Status != "" && !models.ValidEnum(filters.Status, models.ClientStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown client status")
		return
	}

	clients, err := database.ListClients(db, filters)
	if err != nil {
		logger.Error("Failed to list clients", "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch clients")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	if c.Query("includeStats") == "true" {
		for i := range clients {
			stats, err := database.GetClientActivity(db, clients[i].ID)
			if err != nil {
				logger.Error("Failed to load client activity", "client_id", clients[i].ID, "error", err)
				respondError(c, http.StatusInternalServerError, codeStatsError, "Failed to fetch client stats")
				return
			}
			clients[i].Stats = stats
		}
	}

	respondList(c, clients, len(clients))
}

func handleGetClient(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	clientID, ok := parseIDParam(c)
	if !ok {
		return
	}

	client, err := database.GetClient(db, clientID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Client not found")
			return
		}
		logger.Error("Failed to get client", "client_id", clientID, "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch client")
		return
	}

	if c.Query("includeStats") == "true" {
		stats, err := database.GetClientActivity(db, client.ID)
		if err != nil {
			logger.Error("Failed to load client activity", "client_id", client.ID, "error", err)
			respondError(c, http.StatusInternalServerError, codeStatsError, "Failed to fetch client stats")
			return
		}
		client.Stats = stats
	}

	respondData(c, http.StatusOK, client)
}

func handleCreateClient(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Client name is required")
		return
	}
	if req.Email == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Client email is required")
		return
	}
	if !emailRegex.MatchString(req.Email) {
		respondError(c, http.StatusBadRequest, codeValidation, "Client email is not valid")
		return
	}
	if req.Status != "" && !models.ValidEnum(req.Status, models.ClientStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown client status")
		return
	}

	client, err := database.CreateClient(db, models.Client{
		Name:           req.Name,
		Email:          req.Email,
		Document:       req.Document,
		Phone:          req.Phone,
		SecondaryPhone: req.SecondaryPhone,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Status:         req.Status,
		Notes:          req.Notes,
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "A client with this email already exists")
			return
		}
		logger.Error("Failed to create client", "email", req.Email, "error", err)
		respondError(c, http.StatusInternalServerError, codeCreateError, "Failed to create client")
		return
	}

	respondData(c, http.StatusCreated, client)
}

func handleUpdateClient(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	clientID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Name != nil && *req.Name == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "Client name cannot be empty")
		return
	}
	if req.Email != nil && !emailRegex.MatchString(*req.Email) {
		respondError(c, http.StatusBadRequest, codeValidation, "Client email is not valid")
		return
	}
	if req.Status != nil && !models.ValidEnum(*req.Status, models.ClientStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown client status")
		return
	}

	client, err := database.UpdateClient(db, clientID, database.ClientPatch{
		Name:           req.Name,
		Email:          req.Email,
		Document:       req.Document,
		Phone:          req.Phone,
		SecondaryPhone: req.SecondaryPhone,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Status:         req.Status,
		Notes:          req.Notes,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Client not found")
			return
		}
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, codeDuplicate, "A client with this email already exists")
			return
		}
		logger.Error("Failed to update client", "client_id", clientID, "error", err)
		respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update client")
		return
	}

	respondData(c, http.StatusOK, client)
}

func handleDeleteClient(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	clientID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := database.DeleteClient(db, clientID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Client not found")
			return
		}
		logger.Error("Failed to delete client", "client_id", clientID, "error", err)
		respondError(c, http.StatusInternalServerError, codeDeleteError, "Failed to delete client")
		return
	}

	respondData(c, http.StatusOK, nil)
}

func handleClientStats(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	stats, err := database.GetClientStats(db)
	if err != nil {
		logger.Error("Failed to get client stats", "error", err)
		respondError(c, http.StatusInternalServerError, codeStatsError, "Failed to fetch client stats")
		return
	}

	respondData(c, http.StatusOK, stats)
}
