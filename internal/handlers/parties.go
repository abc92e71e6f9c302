package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"festarent/internal/database"
	"festarent/internal/email"
	"festarent/internal/logger"
	"festarent/internal/models"
	"festarent/internal/pricing"

	"github.com/gin-gonic/gin"
)

type partyToyRequest struct {
	ToyID    int `json:"toy_id"`
	Quantity int `json:"quantity"`
}

type createPartyRequest struct {
	ClientID               int               `json:"client_id"`
	PartyDate              string            `json:"party_date"`
	StartTime              string            `json:"start_time"`
	DurationHours          int               `json:"duration_hours"`
	AssemblyTime           *string           `json:"assembly_time"`
	DisassemblyTime        *string           `json:"disassembly_time"`
	Status                 string            `json:"status"`
	PaymentStatus          string            `json:"payment_status"`
	Toys                   []partyToyRequest `json:"toys"`
	AdditionsCents         int64             `json:"additions_cents"`
	DiscountsCents         int64             `json:"discounts_cents"`
	TotalCents             *int64            `json:"total_cents"`
	EntryCents             *int64            `json:"entry_cents"`
	Address                *string           `json:"address"`
	City                   *string           `json:"city"`
	State                  *string           `json:"state"`
	ZipCode                *string           `json:"zip_code"`
	UseClientAddress       bool              `json:"use_client_address"`
	Notes                  *string           `json:"notes"`
	CreateEntryTransaction bool              `json:"create_entry_transaction"`
}

type updatePartyRequest struct {
	ClientID        *int               `json:"client_id"`
	PartyDate       *string            `json:"party_date"`
	StartTime       *string            `json:"start_time"`
	DurationHours   *int               `json:"duration_hours"`
	AssemblyTime    *string            `json:"assembly_time"`
	DisassemblyTime *string            `json:"disassembly_time"`
	Status          *string            `json:"status"`
	PaymentStatus   *string            `json:"payment_status"`
	Toys            *[]partyToyRequest `json:"toys"`
	AdditionsCents  *int64             `json:"additions_cents"`
	DiscountsCents  *int64             `json:"discounts_cents"`
	TotalCents      *int64             `json:"total_cents"`
	EntryCents      *int64             `json:"entry_cents"`
	Address         *string            `json:"address"`
	City            *string            `json:"city"`
	State           *string            `json:"state"`
	ZipCode         *string            `json:"zip_code"`
	Notes           *string            `json:"notes"`
}

func handleListParties(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	filters := database.PartyFilters{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		StartDate:     c.Query("startDate"),
		EndDate:       c.Query("endDate"),
		IncludeClient: c.Query("includeClient") == "true",
		IncludeToys:   c.Query("includeToys") == "true",
	}

	if raw := c.Query("client_id"); raw != "" {
		clientID, err := strconv.Atoi(raw)
		if err != nil || clientID <= 0 {
			respondError(c, http.StatusBadRequest, codeValidation, "client_id must be a positive integer")
			return
		}
		filters.ClientID = clientID
	}
	if filters.Status != "" && !models.ValidEnum(filters.Status, models.PartyStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown party status")
		return
	}
	if filters.PaymentStatus != "" && !models.ValidEnum(filters.PaymentStatus, models.PaymentStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown payment status")
		return
	}

	parties, err := database.ListParties(db, filters)
	if err != nil {
		logger.Error("Failed to list parties", "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch parties")
		return
	}
	if parties == nil {
		parties = []models.Party{}
	}

	respondList(c, parties, len(parties))
}

func handleGetParty(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	partyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	party, err := database.GetParty(db, partyID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Party not found")
			return
		}
		logger.Error("Failed to get party", "party_id", partyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch party")
		return
	}

	if c.Query("includeClient") == "true" {
		client, err := database.GetClient(db, party.ClientID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			logger.Error("Failed to get party client", "party_id", partyID, "error", err)
			respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to fetch party")
			return
		}
		party.Client = client
	}

	respondData(c, http.StatusOK, party)
}

func handleCreateParty(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	var req createPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.ClientID <= 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "client_id is required")
		return
	}
	if !validDate(req.PartyDate) {
		respondError(c, http.StatusBadRequest, codeValidation, "party_date must be YYYY-MM-DD")
		return
	}
	if !validClock(req.StartTime) {
		respondError(c, http.StatusBadRequest, codeValidation, "start_time must be HH:MM")
		return
	}
	if req.DurationHours < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "duration_hours cannot be negative")
		return
	}
	if req.Status != "" && !models.ValidEnum(req.Status, models.PartyStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown party status")
		return
	}
	if req.PaymentStatus != "" && !models.ValidEnum(req.PaymentStatus, models.PaymentStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown payment status")
		return
	}
	if req.AdditionsCents < 0 || req.DiscountsCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Additions and discounts cannot be negative")
		return
	}

	client, err := database.GetClient(db, req.ClientID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusBadRequest, codeValidation, "Client does not exist")
			return
		}
		logger.Error("Failed to verify party client", "client_id", req.ClientID, "error", err)
		respondError(c, http.StatusInternalServerError, codeCreateError, "Failed to create party")
		return
	}

	toys, lines, ok := resolvePartyToys(c, db, req.Toys)
	if !ok {
		return
	}

	durationHours := req.DurationHours
	if durationHours == 0 {
		durationHours = 4
	}

	totalCents := pricing.PartyTotal(lines, req.AdditionsCents, req.DiscountsCents)
	if req.TotalCents != nil {
		totalCents = *req.TotalCents
	}
	if totalCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Party total cannot be negative")
		return
	}

	entryCents := pricing.DefaultEntry(totalCents)
	entryOverridden := false
	if req.EntryCents != nil {
		entryCents = *req.EntryCents
		entryOverridden = true
	}
	if entryCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Party entry cannot be negative")
		return
	}

	assemblyTime, disassemblyTime, ok := resolvePartySchedule(c,
		req.StartTime, durationHours, req.AssemblyTime, req.DisassemblyTime)
	if !ok {
		return
	}

	party := models.Party{
		ClientID:        req.ClientID,
		PartyDate:       req.PartyDate,
		StartTime:       req.StartTime,
		DurationHours:   durationHours,
		AssemblyTime:    assemblyTime,
		DisassemblyTime: disassemblyTime,
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
		TotalCents:      totalCents,
		EntryCents:      entryCents,
		EntryOverridden: entryOverridden,
		AdditionsCents:  req.AdditionsCents,
		DiscountsCents:  req.DiscountsCents,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		ZipCode:         req.ZipCode,
		Notes:           req.Notes,
	}

	if req.UseClientAddress {
		party.Address = client.Address
		party.City = client.City
		party.State = client.State
		party.ZipCode = client.ZipCode
	}

	var entryTransaction *models.Transaction
	if req.CreateEntryTransaction && entryCents > 0 {
		entryTransaction = &models.Transaction{
			Description:     fmt.Sprintf("Entrada - festa de %s em %s", client.Name, req.PartyDate),
			Type:            "income",
			AmountCents:     entryCents,
			Category:        "entrada",
			Status:          "pending",
			TransactionDate: req.PartyDate,
		}
	}

	created, err := database.CreateParty(db, party, toys, entryTransaction)
	if err != nil {
		if isCheckViolation(err) {
			respondError(c, http.StatusBadRequest, codeValidation, "Party fields are out of range")
			return
		}
		logger.Error("Failed to create party", "client_id", req.ClientID, "error", err)
		respondError(c, http.StatusInternalServerError, codeCreateError, "Failed to create party")
		return
	}

	respondData(c, http.StatusCreated, created)
}

func handleUpdateParty(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	partyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.PartyDate != nil && !validDate(*req.PartyDate) {
		respondError(c, http.StatusBadRequest, codeValidation, "party_date must be YYYY-MM-DD")
		return
	}
	if req.StartTime != nil && !validClock(*req.StartTime) {
		respondError(c, http.StatusBadRequest, codeValidation, "start_time must be HH:MM")
		return
	}
	if req.DurationHours != nil && *req.DurationHours < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "duration_hours cannot be negative")
		return
	}
	if req.Status != nil && !models.ValidEnum(*req.Status, models.PartyStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown party status")
		return
	}
	if req.PaymentStatus != nil && !models.ValidEnum(*req.PaymentStatus, models.PaymentStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown payment status")
		return
	}

	current, err := database.GetParty(db, partyID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Party not found")
			return
		}
		logger.Error("Failed to load party for update", "party_id", partyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update party")
		return
	}

	if req.ClientID != nil {
		if _, err := database.GetClient(db, *req.ClientID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(c, http.StatusBadRequest, codeValidation, "Client does not exist")
				return
			}
			logger.Error("Failed to verify party client", "client_id", *req.ClientID, "error", err)
			respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update party")
			return
		}
	}

	patch := database.PartyPatch{
		ClientID:        req.ClientID,
		PartyDate:       req.PartyDate,
		StartTime:       req.StartTime,
		DurationHours:   req.DurationHours,
		AssemblyTime:    req.AssemblyTime,
		DisassemblyTime: req.DisassemblyTime,
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
		AdditionsCents:  req.AdditionsCents,
		DiscountsCents:  req.DiscountsCents,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		ZipCode:         req.ZipCode,
		Notes:           req.Notes,
	}

	// Effective booking lines after this update, for recomputing totals.
	lines := make([]pricing.Line, 0, len(current.Toys))
	for _, pt := range current.Toys {
		lines = append(lines, pricing.Line{DailyRateCents: pt.DailyRateCents, Quantity: pt.Quantity})
	}
	if req.Toys != nil {
		toys, newLines, ok := resolvePartyToys(c, db, *req.Toys)
		if !ok {
			return
		}
		patch.Toys = &toys
		lines = newLines
	}

	additions := current.AdditionsCents
	if req.AdditionsCents != nil {
		additions = *req.AdditionsCents
	}
	discounts := current.DiscountsCents
	if req.DiscountsCents != nil {
		discounts = *req.DiscountsCents
	}

	totalCents := pricing.PartyTotal(lines, additions, discounts)
	if req.TotalCents != nil {
		totalCents = *req.TotalCents
	}
	if totalCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Party total cannot be negative")
		return
	}
	patch.TotalCents = &totalCents

	// The entry follows the 30% rule until the caller overrides it; an
	// overridden entry survives later total recomputations.
	entryCents := current.EntryCents
	entryOverridden := current.EntryOverridden
	if req.EntryCents != nil {
		entryCents = *req.EntryCents
		entryOverridden = true
	} else if !current.EntryOverridden {
		entryCents = pricing.DefaultEntry(totalCents)
	}
	if entryCents < 0 {
		respondError(c, http.StatusBadRequest, codeValidation, "Party entry cannot be negative")
		return
	}
	patch.EntryCents = &entryCents
	patch.EntryOverridden = &entryOverridden

	// Derived schedule follows start time and duration unless given
	// explicitly.
	startTime := current.StartTime
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	durationHours := current.DurationHours
	if req.DurationHours != nil {
		durationHours = *req.DurationHours
	}
	assemblyTime, disassemblyTime, ok := resolvePartySchedule(c,
		startTime, durationHours, req.AssemblyTime, req.DisassemblyTime)
	if !ok {
		return
	}
	patch.AssemblyTime = &assemblyTime
	patch.DisassemblyTime = &disassemblyTime

	party, err := database.UpdateParty(db, partyID, patch)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Party not found")
			return
		}
		if isCheckViolation(err) {
			respondError(c, http.StatusBadRequest, codeValidation, "Party fields are out of range")
			return
		}
		logger.Error("Failed to update party", "party_id", partyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update party")
		return
	}

	respondData(c, http.StatusOK, party)
}

func handleUpdatePartyStatus(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	partyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "status is required")
		return
	}
	if !models.ValidEnum(req.Status, models.PartyStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown party status")
		return
	}

	party, err := database.UpdatePartyStatus(db, partyID, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Party not found")
			return
		}
		logger.Error("Failed to update party status", "party_id", partyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update party status")
		return
	}

	if req.Status == "confirmed" {
		notifyPartyConfirmed(c, db, party)
	}

	respondData(c, http.StatusOK, party)
}

func handleUpdatePartyPayment(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	partyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentStatus == "" {
		respondError(c, http.StatusBadRequest, codeValidation, "payment_status is required")
		return
	}
	if !models.ValidEnum(req.PaymentStatus, models.PaymentStatuses) {
		respondError(c, http.StatusBadRequest, codeValidation, "Unknown payment status")
		return
	}

	party, err := database.UpdatePartyPayment(db, partyID, req.PaymentStatus)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Party not found")
			return
		}
		logger.Error("Failed to update party payment", "party_id", partyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeUpdateError, "Failed to update party payment")
		return
	}

	respondData(c, http.StatusOK, party)
}

func handleDeleteParty(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	partyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := database.DeleteParty(db, partyID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "Party not found")
			return
		}
		logger.Error("Failed to delete party", "party_id", partyID, "error", err)
		respondError(c, http.StatusInternalServerError, codeDeleteError, "Failed to delete party")
		return
	}

	respondData(c, http.StatusOK, nil)
}

func handlePartyStats(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if (startDate != "" && !validDate(startDate)) || (endDate != "" && !validDate(endDate)) {
		respondError(c, http.StatusBadRequest, codeValidation, "Dates must be YYYY-MM-DD")
		return
	}

	stats, err := database.GetPartyStats(db, startDate, endDate)
	if err != nil {
		logger.Error("Failed to get party stats", "error", err)
		respondError(c, http.StatusInternalServerError, codeStatsError, "Failed to fetch party stats")
		return
	}

	respondData(c, http.StatusOK, stats)
}

// resolvePartyToys verifies every requested toy exists and captures its
// current daily rate into the booking line. Writes the error response itself
// and returns ok=false on failure.
func resolvePartyToys(c *gin.Context, db *sql.DB, reqs []partyToyRequest) ([]models.PartyToy, []pricing.Line, bool) {
	toys := make([]models.PartyToy, 0, len(reqs))
	lines := make([]pricing.Line, 0, len(reqs))

	for _, item := range reqs {
		if item.ToyID <= 0 {
			respondError(c, http.StatusBadRequest, codeValidation, "toy_id must be a positive integer")
			return nil, nil, false
		}
		if item.Quantity <= 0 {
			respondError(c, http.StatusBadRequest, codeValidation, "Toy quantity must be positive")
			return nil, nil, false
		}

		toy, err := database.GetToy(db, item.ToyID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(c, http.StatusBadRequest, codeValidation,
					fmt.Sprintf("Toy %d does not exist", item.ToyID))
				return nil, nil, false
			}
			logger.Error("Failed to verify party toy", "toy_id", item.ToyID, "error", err)
			respondError(c, http.StatusInternalServerError, codeFetchError, "Failed to verify toys")
			return nil, nil, false
		}

		toys = append(toys, models.PartyToy{
			ToyID:          toy.ID,
			Quantity:       item.Quantity,
			DailyRateCents: toy.DailyRateCents,
		})
		lines = append(lines, pricing.Line{
			DailyRateCents: toy.DailyRateCents,
			Quantity:       item.Quantity,
		})
	}

	return toys, lines, true
}

// resolvePartySchedule derives assembly and disassembly times unless the
// caller supplied them. Writes the error response itself on a bad clock.
func resolvePartySchedule(c *gin.Context, startTime string, durationHours int, assembly, disassembly *string) (string, string, bool) {
	assemblyTime, err := pricing.AssemblyTime(startTime)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "start_time must be HH:MM")
		return "", "", false
	}
	if assembly != nil {
		if !validClock(*assembly) {
			respondError(c, http.StatusBadRequest, codeValidation, "assembly_time must be HH:MM")
			return "", "", false
		}
		assemblyTime = *assembly
	}

	disassemblyTime, err := pricing.DisassemblyTime(startTime, durationHours)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, "start_time must be HH:MM")
		return "", "", false
	}
	if disassembly != nil {
		if !validClock(*disassembly) {
			respondError(c, http.StatusBadRequest, codeValidation, "disassembly_time must be HH:MM")
			return "", "", false
		}
		disassemblyTime = *disassembly
	}

	return assemblyTime, disassemblyTime, true
}

// notifyPartyConfirmed fires the confirmation email without blocking the
// response. Failures only get logged.
func notifyPartyConfirmed(c *gin.Context, db *sql.DB, party *models.Party) {
	emailService, exists := c.Get("email_service")
	if !exists {
		return
	}
	service, ok := emailService.(*email.Service)
	if !ok || !service.IsEnabled() {
		return
	}

	client, err := database.GetClient(db, party.ClientID)
	if err != nil {
		logger.Warn("Skipping confirmation email, client lookup failed",
			"party_id", party.ID, "error", err)
		return
	}

	go func() {
		if err := service.SendBookingConfirmation(client, party); err != nil {
			logger.Warn("Failed to send confirmation email",
				"party_id", party.ID, "error", err)
		}
	}()
}
