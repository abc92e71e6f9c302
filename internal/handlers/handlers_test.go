package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"festarent/internal/config"
	"festarent/internal/database"
	"festarent/internal/email"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

type testEnv struct {
	router *gin.Engine
	db     *sql.DB
	token  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	user, err := database.CreateUser(db, "Maria", "maria@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}
	token, err := database.CreateAPIToken(db, user.ID)
	if err != nil {
		t.Fatal("Failed to create token:", err)
	}

	cfg := &config.Config{Env: "development"}

	router := gin.New()
	SetupRoutes(router, db, cfg, email.NewService(cfg))

	return &testEnv{router: router, db: db, token: token.Token}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal("Failed to marshal request body:", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+e.token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Total   *int            `json:"total"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	req := httptest.NewRequest("GET", "/api/clients", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	resp := decodeEnvelope(t, w)
	if resp.Success || resp.Error != "UNAUTHORIZED" {
		t.Errorf("Unexpected error envelope: %+v", resp)
	}
}

func TestLoginAndLogout(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	body, _ := json.Marshal(map[string]string{
		"email":    "maria@example.com",
		"password": "password123",
	})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on login, got %d: %s", w.Code, w.Body.String())
	}

	var loginResp struct {
		Success bool `json:"success"`
		Data    struct {
			Token          string `json:"token"`
			OrganizationID string `json:"organization_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatal("Failed to decode login response:", err)
	}
	if loginResp.Data.Token == "" || loginResp.Data.OrganizationID == "" {
		t.Fatal("Expected token and organization in login response")
	}

	// The fresh token works and logout revokes it.
	session := &testEnv{router: env.router, db: env.db, token: loginResp.Data.Token}
	if w := session.request(t, "GET", "/api/clients", nil); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with fresh token, got %d", w.Code)
	}
	if w := session.request(t, "POST", "/api/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on logout, got %d", w.Code)
	}
	if w := session.request(t, "GET", "/api/clients", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", w.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	body, _ := json.Marshal(map[string]string{
		"email":    "maria@example.com",
		"password": "wrong",
	})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad credentials, got %d", w.Code)
	}
}

func TestClientLifecycleOverHTTP(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "POST", "/api/clients", map[string]interface{}{
		"name":  "Ana Souza",
		"email": "ana@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	if !resp.Success {
		t.Fatal("Expected success envelope")
	}

	var created struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatal("Failed to decode created client:", err)
	}
	if created.Status != "active" {
		t.Errorf("Expected default status 'active', got %s", created.Status)
	}

	// Duplicate email conflicts.
	w = env.request(t, "POST", "/api/clients", map[string]interface{}{
		"name":  "Other Ana",
		"email": "ana@example.com",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Error != "DUPLICATE_EMAIL" {
		t.Errorf("Expected DUPLICATE_EMAIL, got %s", resp.Error)
	}

	// Update is idempotent: repeating the same PUT yields the same state.
	for i := 0; i < 2; i++ {
		w = env.request(t, "PUT", fmt.Sprintf("/api/clients/%d", created.ID), map[string]interface{}{
			"status": "vip",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 on update, got %d: %s", w.Code, w.Body.String())
		}
		var updated struct {
			Status string `json:"status"`
		}
		resp := decodeEnvelope(t, w)
		if err := json.Unmarshal(resp.Data, &updated); err != nil {
			t.Fatal("Failed to decode updated client:", err)
		}
		if updated.Status != "vip" {
			t.Errorf("Expected status 'vip', got %s", updated.Status)
		}
	}

	w = env.request(t, "GET", "/api/clients", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on list, got %d", w.Code)
	}
	resp = decodeEnvelope(t, w)
	if resp.Total == nil || *resp.Total != 1 {
		t.Errorf("Expected total 1, got %v", resp.Total)
	}

	w = env.request(t, "DELETE", fmt.Sprintf("/api/clients/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on delete, got %d", w.Code)
	}

	w = env.request(t, "GET", fmt.Sprintf("/api/clients/%d", created.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestListReturnsEmptyArrayNotNull(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "GET", "/api/toys", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decodeEnvelope(t, w)
	if string(resp.Data) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", resp.Data)
	}
}

func TestInvalidIDPath(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	for _, path := range []string{"/api/clients/abc", "/api/clients/0", "/api/clients/-3"} {
		w := env.request(t, "GET", path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", path, w.Code)
		}
		if resp := decodeEnvelope(t, w); resp.Error != "INVALID_ID" {
			t.Errorf("Expected INVALID_ID for %s, got %s", path, resp.Error)
		}
	}
}

func TestClientValidation(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	cases := []map[string]interface{}{
		{"email": "ana@example.com"},                         // missing name
		{"name": "Ana"},                                      // missing email
		{"name": "Ana", "email": "not-an-email"},             // bad email
		{"name": "Ana", "email": "a@b.co", "status": "gold"}, // bad status
	}

	for _, body := range cases {
		w := env.request(t, "POST", "/api/clients", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %v, got %d", body, w.Code)
		}
		if resp := decodeEnvelope(t, w); resp.Error != "VALIDATION_ERROR" {
			t.Errorf("Expected VALIDATION_ERROR for %v, got %s", body, resp.Error)
		}
	}
}

func TestPartyCreationDerivesPricingAndSchedule(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "POST", "/api/clients", map[string]interface{}{
		"name": "Ana", "email": "ana@example.com",
	})
	var client struct {
		ID int `json:"id"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &client)

	w = env.request(t, "POST", "/api/toys", map[string]interface{}{
		"name": "Pula-pula", "daily_rate_cents": 5000, "total_quantity": 1,
	})
	var toyA struct {
		ID int `json:"id"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &toyA)

	w = env.request(t, "POST", "/api/toys", map[string]interface{}{
		"name": "Piscina", "daily_rate_cents": 3000, "total_quantity": 1,
	})
	var toyB struct {
		ID int `json:"id"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &toyB)

	w = env.request(t, "POST", "/api/parties", map[string]interface{}{
		"client_id":  client.ID,
		"party_date": "2026-09-12",
		"start_time": "14:00",
		"toys": []map[string]interface{}{
			{"toy_id": toyA.ID, "quantity": 1},
			{"toy_id": toyB.ID, "quantity": 1},
		},
		"additions_cents": 1000,
		"discounts_cents": 500,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var party struct {
		ID              int    `json:"id"`
		TotalCents      int64  `json:"total_cents"`
		EntryCents      int64  `json:"entry_cents"`
		EntryOverridden bool   `json:"entry_overridden"`
		DurationHours   int    `json:"duration_hours"`
		AssemblyTime    string `json:"assembly_time"`
		DisassemblyTime string `json:"disassembly_time"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &party); err != nil {
		t.Fatal("Failed to decode party:", err)
	}

	if party.TotalCents != 8500 {
		t.Errorf("Expected total 8500, got %d", party.TotalCents)
	}
	if party.EntryCents != 2550 {
		t.Errorf("Expected entry 2550, got %d", party.EntryCents)
	}
	if party.EntryOverridden {
		t.Error("Default entry should not be flagged as overridden")
	}
	if party.DurationHours != 4 {
		t.Errorf("Expected default duration 4, got %d", party.DurationHours)
	}
	if party.AssemblyTime != "13:00" {
		t.Errorf("Expected assembly at 13:00, got %s", party.AssemblyTime)
	}
	if party.DisassemblyTime != "18:30" {
		t.Errorf("Expected disassembly at 18:30, got %s", party.DisassemblyTime)
	}
}

func TestPartyEntryOverrideSurvivesUpdates(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "POST", "/api/clients", map[string]interface{}{
		"name": "Ana", "email": "ana@example.com",
	})
	var client struct {
		ID int `json:"id"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &client)

	w = env.request(t, "POST", "/api/parties", map[string]interface{}{
		"client_id":   client.ID,
		"party_date":  "2026-09-12",
		"start_time":  "14:00",
		"total_cents": 10000,
		"entry_cents": 5000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var party struct {
		ID              int   `json:"id"`
		EntryCents      int64 `json:"entry_cents"`
		EntryOverridden bool  `json:"entry_overridden"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &party)
	if !party.EntryOverridden || party.EntryCents != 5000 {
		t.Fatalf("Expected overridden entry 5000, got %+v", party)
	}

	// Changing the total must not recompute an overridden entry.
	w = env.request(t, "PUT", fmt.Sprintf("/api/parties/%d", party.ID), map[string]interface{}{
		"total_cents": 20000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on update, got %d: %s", w.Code, w.Body.String())
	}
	var updated struct {
		TotalCents      int64 `json:"total_cents"`
		EntryCents      int64 `json:"entry_cents"`
		EntryOverridden bool  `json:"entry_overridden"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &updated)
	if updated.TotalCents != 20000 {
		t.Errorf("Expected total 20000, got %d", updated.TotalCents)
	}
	if !updated.EntryOverridden || updated.EntryCents != 5000 {
		t.Errorf("Expected entry to stay 5000, got %d (overridden=%v)",
			updated.EntryCents, updated.EntryOverridden)
	}
}

func TestPartyStatusAndPaymentPatches(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "POST", "/api/clients", map[string]interface{}{
		"name": "Ana", "email": "ana@example.com",
	})
	var client struct {
		ID int `json:"id"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &client)

	w = env.request(t, "POST", "/api/parties", map[string]interface{}{
		"client_id":                client.ID,
		"party_date":               "2026-09-12",
		"start_time":               "14:00",
		"total_cents":              10000,
		"create_entry_transaction": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var party struct {
		ID int `json:"id"`
	}
	json.Unmarshal(decodeEnvelope(t, w).Data, &party)

	w = env.request(t, "PATCH", fmt.Sprintf("/api/parties/%d/status", party.ID), map[string]interface{}{
		"status": "confirmed",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on status patch, got %d: %s", w.Code, w.Body.String())
	}

	w = env.request(t, "PATCH", fmt.Sprintf("/api/parties/%d/status", party.ID), map[string]interface{}{
		"status": "somewhere",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", w.Code)
	}

	w = env.request(t, "PATCH", fmt.Sprintf("/api/parties/%d/payment", party.ID), map[string]interface{}{
		"payment_status": "paid",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on payment patch, got %d: %s", w.Code, w.Body.String())
	}

	// The entry transaction created at booking time follows the payment.
	transactions, err := database.ListTransactions(env.db, database.TransactionFilters{PartyID: party.ID})
	if err != nil {
		t.Fatal("Failed to list transactions:", err)
	}
	if len(transactions) != 1 || transactions[0].Status != "paid" {
		t.Errorf("Expected linked transaction to be paid, got %+v", transactions)
	}
}

func TestTransactionValidationOverHTTP(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "POST", "/api/transactions", map[string]interface{}{
		"description":      "Conserto",
		"type":             "expense",
		"amount_cents":     5000,
		"transaction_date": "2026-08-15",
		"toy_id":           999,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown toy link, got %d", w.Code)
	}

	w = env.request(t, "POST", "/api/transactions", map[string]interface{}{
		"description":      "Conserto",
		"type":             "transfer",
		"amount_cents":     5000,
		"transaction_date": "2026-08-15",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown type, got %d", w.Code)
	}

	w = env.request(t, "POST", "/api/transactions", map[string]interface{}{
		"description":      "Conserto",
		"type":             "expense",
		"amount_cents":     -10,
		"transaction_date": "2026-08-15",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative amount, got %d", w.Code)
	}
}

func TestToysAvailableEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "POST", "/api/toys", map[string]interface{}{
		"name": "Pula-pula", "daily_rate_cents": 5000, "total_quantity": 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}

	w = env.request(t, "GET", "/api/toys/available?date=2026-09-12", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if resp.Total == nil || *resp.Total != 1 {
		t.Errorf("Expected 1 available toy, got %v", resp.Total)
	}

	w = env.request(t, "GET", "/api/toys/available", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without dates, got %d", w.Code)
	}

	w = env.request(t, "GET", "/api/toys/available?startDate=2026-09-12&endDate=2026-09-10", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for inverted range, got %d", w.Code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	defer env.db.Close()

	w := env.request(t, "GET", "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var dashboard struct {
		StatCards    json.RawMessage `json:"stat_cards"`
		ChartMonthly []interface{}   `json:"chart_monthly"`
	}
	resp := decodeEnvelope(t, w)
	if err := json.Unmarshal(resp.Data, &dashboard); err != nil {
		t.Fatal("Failed to decode dashboard:", err)
	}
	if len(dashboard.ChartMonthly) != 6 {
		t.Errorf("Expected default 6 monthly points, got %d", len(dashboard.ChartMonthly))
	}

	w = env.request(t, "GET", "/api/dashboard?months=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad months, got %d", w.Code)
	}

	w = env.request(t, "GET", "/api/dashboard?months=3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp = decodeEnvelope(t, w)
	if err := json.Unmarshal(resp.Data, &dashboard); err != nil {
		t.Fatal("Failed to decode dashboard:", err)
	}
	if len(dashboard.ChartMonthly) != 3 {
		t.Errorf("Expected 3 monthly points, got %d", len(dashboard.ChartMonthly))
	}
}
