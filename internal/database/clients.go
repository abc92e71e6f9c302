package database

import (
	"database/sql"
	"fmt"
	"strings"

	"festarent/internal/models"
)

// ClientFilters narrows ListClients. Zero values mean "no filter"; each set
// field appends one AND clause.
type ClientFilters struct {
	Status string
	Search string
}

// ClientPatch carries a partial update. Nil fields are left unchanged.
type ClientPatch struct {
	Name           *string
	Email          *string
	Document       *string
	Phone          *string
	SecondaryPhone *string
	Address        *string
	City           *string
	State          *string
	ZipCode        *string
	Status         *string
	Notes          *string
}

const clientColumns = `id, name, email, document, phone, secondary_phone,
	address, city, state, zip_code, status, notes, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }) (*models.Client, error) {
	client := &models.Client{}
	var document, phone, secondaryPhone, address, city, state, zipCode, notes sql.NullString

	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&document,
		&phone,
		&secondaryPhone,
		&address,
		&city,
		&state,
		&zipCode,
		&client.Status,
		&notes,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	client.Document = nullableString(document)
	client.Phone = nullableString(phone)
	client.SecondaryPhone = nullableString(secondaryPhone)
	client.Address = nullableString(address)
	client.City = nullableString(city)
	client.State = nullableString(state)
	client.ZipCode = nullableString(zipCode)
	client.Notes = nullableString(notes)

	return client, nil
}

func nullableString(s sql.NullString) *string {
	if s.Valid {
		return &s.String
	}
	return nil
}

func ListClients(db *sql.DB, filters ClientFilters) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	var args []interface{}

	if filters.Status != "" {
		query += ` AND status = ?`
		args = append(args, filters.Status)
	}
	if filters.Search != "" {
		query += ` AND (name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE)`
		term := "%" + filters.Search + "%"
		args = append(args, term, term)
	}
	query += ` ORDER BY name COLLATE NOCASE`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *client)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

func GetClient(db *sql.DB, clientID int) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(db.QueryRow(query, clientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query client: %w", err)
	}

	return client, nil
}

func CreateClient(db *sql.DB, client models.Client) (*models.Client, error) {
	if client.Status == "" {
		client.Status = "active"
	}

	query := `
		INSERT INTO clients (name, email, document, phone, secondary_phone,
			address, city, state, zip_code, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query, client.Name, client.Email, client.Document,
		client.Phone, client.SecondaryPhone, client.Address, client.City,
		client.State, client.ZipCode, client.Status, client.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get client ID: %w", err)
	}

	// Re-read so the caller sees DB-computed timestamps and defaults.
	return GetClient(db, int(id))
}

func UpdateClient(db *sql.DB, clientID int, patch ClientPatch) (*models.Client, error) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Document != nil {
		add("document", *patch.Document)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.SecondaryPhone != nil {
		add("secondary_phone", *patch.SecondaryPhone)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.City != nil {
		add("city", *patch.City)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.ZipCode != nil {
		add("zip_code", *patch.ZipCode)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	if len(sets) == 0 {
		return GetClient(db, clientID)
	}

	query := `UPDATE clients SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, clientID)

	result, err := db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return GetClient(db, clientID)
}

func DeleteClient(db *sql.DB, clientID int) error {
	result, err := db.Exec(`DELETE FROM clients WHERE id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ClientStatusCounts aggregates per-status counts in a single round trip.
type ClientStatusCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	VIP      int `json:"vip"`
}

func GetClientStats(db *sql.DB) (*ClientStatusCounts, error) {
	stats := &ClientStatusCounts{}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'inactive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'vip' THEN 1 ELSE 0 END), 0)
		FROM clients
	`

	err := db.QueryRow(query).Scan(&stats.Total, &stats.Active, &stats.Inactive, &stats.VIP)
	if err != nil {
		return nil, fmt.Errorf("failed to get client stats: %w", err)
	}

	return stats, nil
}

// GetClientActivity returns the booking aggregate attached to a client when
// includeStats is requested.
func GetClientActivity(db *sql.DB, clientID int) (*models.ClientStats, error) {
	stats := &models.ClientStats{}
	var lastPartyDate sql.NullString

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_cents), 0),
			MAX(party_date)
		FROM parties
		WHERE client_id = ?
	`

	err := db.QueryRow(query, clientID).Scan(&stats.TotalParties, &stats.TotalBilledCents, &lastPartyDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get client activity: %w", err)
	}

	stats.LastPartyDate = nullableString(lastPartyDate)
	return stats, nil
}
