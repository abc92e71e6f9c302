package database

import (
	"database/sql"
	"fmt"
	"strings"

	"festarent/internal/models"
)

type PartyFilters struct {
	Status        string
	PaymentStatus string
	ClientID      int
	StartDate     string
	EndDate       string
	IncludeClient bool
	IncludeToys   bool
}

type PartyPatch struct {
	ClientID        *int
	PartyDate       *string
	StartTime       *string
	DurationHours   *int
	AssemblyTime    *string
	DisassemblyTime *string
	Status          *string
	PaymentStatus   *string
	TotalCents      *int64
	EntryCents      *int64
	EntryOverridden *bool
	AdditionsCents  *int64
	DiscountsCents  *int64
	Address         *string
	City            *string
	State           *string
	ZipCode         *string
	Notes           *string
	// Toys, when non-nil, replaces the whole booking list.
	Toys *[]models.PartyToy
}

const partyColumns = `id, client_id, party_date, start_time, duration_hours,
	assembly_time, disassembly_time, status, payment_status, total_cents,
	entry_cents, entry_overridden, additions_cents, discounts_cents,
	address, city, state, zip_code, notes, created_at, updated_at`

func scanParty(row interface{ Scan(...interface{}) error }) (*models.Party, error) {
	party := &models.Party{}
	var address, city, state, zipCode, notes sql.NullString

	err := row.Scan(
		&party.ID,
		&party.ClientID,
		&party.PartyDate,
		&party.StartTime,
		&party.DurationHours,
		&party.AssemblyTime,
		&party.DisassemblyTime,
		&party.Status,
		&party.PaymentStatus,
		&party.TotalCents,
		&party.EntryCents,
		&party.EntryOverridden,
		&party.AdditionsCents,
		&party.DiscountsCents,
		&address,
		&city,
		&state,
		&zipCode,
		&notes,
		&party.CreatedAt,
		&party.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	party.Address = nullableString(address)
	party.City = nullableString(city)
	party.State = nullableString(state)
	party.ZipCode = nullableString(zipCode)
	party.Notes = nullableString(notes)

	return party, nil
}

func ListParties(db *sql.DB, filters PartyFilters) ([]models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE 1=1`
	var args []interface{}

	if filters.Status != "" {
		query += ` AND status = ?`
		args = append(args, filters.Status)
	}
	if filters.PaymentStatus != "" {
		query += ` AND payment_status = ?`
		args = append(args, filters.PaymentStatus)
	}
	if filters.ClientID != 0 {
		query += ` AND client_id = ?`
		args = append(args, filters.ClientID)
	}
	if filters.StartDate != "" {
		query += ` AND party_date >= ?`
		args = append(args, filters.StartDate)
	}
	if filters.EndDate != "" {
		query += ` AND party_date <= ?`
		args = append(args, filters.EndDate)
	}
	query += ` ORDER BY party_date DESC, start_time DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer rows.Close()

	var parties []models.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, *party)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parties: %w", err)
	}

	for i := range parties {
		if filters.IncludeClient {
			client, err := GetClient(db, parties[i].ClientID)
			if err != nil && err != ErrNotFound {
				return nil, err
			}
			parties[i].Client = client
		}
		if filters.IncludeToys {
			toys, err := GetPartyToys(db, parties[i].ID)
			if err != nil {
				return nil, err
			}
			parties[i].Toys = toys
		}
	}

	return parties, nil
}

func GetParty(db *sql.DB, partyID int) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE id = ?`

	party, err := scanParty(db.QueryRow(query, partyID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query party: %w", err)
	}

	toys, err := GetPartyToys(db, party.ID)
	if err != nil {
		return nil, err
	}
	party.Toys = toys

	return party, nil
}

func GetPartyToys(db *sql.DB, partyID int) ([]models.PartyToy, error) {
	query := `
		SELECT pt.id, pt.party_id, pt.toy_id, pt.quantity, pt.daily_rate_cents, pt.created_at,
		       t.id, t.name, t.category, t.status, t.condition, t.daily_rate_cents,
		       t.value_cents, t.total_quantity, t.available_quantity, t.created_at, t.updated_at
		FROM party_toys pt
		JOIN toys t ON t.id = pt.toy_id
		WHERE pt.party_id = ?
		ORDER BY t.name COLLATE NOCASE
	`

	rows, err := db.Query(query, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query party toys: %w", err)
	}
	defer rows.Close()

	var partyToys []models.PartyToy
	for rows.Next() {
		var pt models.PartyToy
		var toy models.Toy

		err := rows.Scan(
			&pt.ID,
			&pt.PartyID,
			&pt.ToyID,
			&pt.Quantity,
			&pt.DailyRateCents,
			&pt.CreatedAt,
			&toy.ID,
			&toy.Name,
			&toy.Category,
			&toy.Status,
			&toy.Condition,
			&toy.DailyRateCents,
			&toy.ValueCents,
			&toy.TotalQuantity,
			&toy.AvailableQuantity,
			&toy.CreatedAt,
			&toy.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan party toy: %w", err)
		}

		pt.Toy = &toy
		partyToys = append(partyToys, pt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating party toys: %w", err)
	}

	return partyToys, nil
}

// CreateParty inserts the party, its toy bookings and, when entryTransaction
// is set, the matching deposit income transaction — all in one database
// transaction so a failed insert leaves nothing behind.
func CreateParty(db *sql.DB, party models.Party, toys []models.PartyToy, entryTransaction *models.Transaction) (*models.Party, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if party.Status == "" {
		party.Status = "pending"
	}
	if party.PaymentStatus == "" {
		party.PaymentStatus = "unpaid"
	}

	query := `
		INSERT INTO parties (client_id, party_date, start_time, duration_hours,
			assembly_time, disassembly_time, status, payment_status,
			total_cents, entry_cents, entry_overridden, additions_cents,
			discounts_cents, address, city, state, zip_code, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query, party.ClientID, party.PartyDate,
		party.StartTime, party.DurationHours, party.AssemblyTime,
		party.DisassemblyTime, party.Status, party.PaymentStatus,
		party.TotalCents, party.EntryCents, party.EntryOverridden,
		party.AdditionsCents, party.DiscountsCents, party.Address, party.City,
		party.State, party.ZipCode, party.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create party: %w", err)
	}

	partyID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get party ID: %w", err)
	}

	for _, toy := range toys {
		_, err = tx.Exec(`
			INSERT INTO party_toys (party_id, toy_id, quantity, daily_rate_cents)
			VALUES (?, ?, ?, ?)`,
			partyID, toy.ToyID, toy.Quantity, toy.DailyRateCents)
		if err != nil {
			return nil, fmt.Errorf("failed to add toy to party: %w", err)
		}
	}

	if entryTransaction != nil {
		id := int(partyID)
		entryTransaction.PartyID = &id
		entryTransaction.ClientID = &party.ClientID
		_, err = tx.Exec(`
			INSERT INTO transactions (description, type, amount_cents, category,
				status, transaction_date, party_id, client_id, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entryTransaction.Description, entryTransaction.Type,
			entryTransaction.AmountCents, entryTransaction.Category,
			entryTransaction.Status, entryTransaction.TransactionDate,
			entryTransaction.PartyID, entryTransaction.ClientID,
			entryTransaction.Notes)
		if err != nil {
			return nil, fmt.Errorf("failed to create entry transaction: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit party: %w", err)
	}

	return GetParty(db, int(partyID))
}

func UpdateParty(db *sql.DB, partyID int, patch PartyPatch) (*models.Party, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.ClientID != nil {
		add("client_id", *patch.ClientID)
	}
	if patch.PartyDate != nil {
		add("party_date", *patch.PartyDate)
	}
	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.DurationHours != nil {
		add("duration_hours", *patch.DurationHours)
	}
	if patch.AssemblyTime != nil {
		add("assembly_time", *patch.AssemblyTime)
	}
	if patch.DisassemblyTime != nil {
		add("disassembly_time", *patch.DisassemblyTime)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.PaymentStatus != nil {
		add("payment_status", *patch.PaymentStatus)
	}
	if patch.TotalCents != nil {
		add("total_cents", *patch.TotalCents)
	}
	if patch.EntryCents != nil {
		add("entry_cents", *patch.EntryCents)
	}
	if patch.EntryOverridden != nil {
		add("entry_overridden", *patch.EntryOverridden)
	}
	if patch.AdditionsCents != nil {
		add("additions_cents", *patch.AdditionsCents)
	}
	if patch.DiscountsCents != nil {
		add("discounts_cents", *patch.DiscountsCents)
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
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	if len(sets) > 0 {
		query := `UPDATE parties SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
		args = append(args, partyID)

		result, err := tx.Exec(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update party: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	if patch.Toys != nil {
		if _, err := tx.Exec(`DELETE FROM party_toys WHERE party_id = ?`, partyID); err != nil {
			return nil, fmt.Errorf("failed to clear party toys: %w", err)
		}
		for _, toy := range *patch.Toys {
			_, err = tx.Exec(`
				INSERT INTO party_toys (party_id, toy_id, quantity, daily_rate_cents)
				VALUES (?, ?, ?, ?)`,
				partyID, toy.ToyID, toy.Quantity, toy.DailyRateCents)
			if err != nil {
				return nil, fmt.Errorf("failed to add toy to party: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit party update: %w", err)
	}

	return GetParty(db, partyID)
}

func UpdatePartyStatus(db *sql.DB, partyID int, status string) (*models.Party, error) {
	result, err := db.Exec(`UPDATE parties SET status = ? WHERE id = ?`, status, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to update party status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return GetParty(db, partyID)
}

// UpdatePartyPayment changes the payment status and keeps the linked income
// transactions consistent in the same database transaction: 'paid' marks them
// paid, anything else returns them to pending.
func UpdatePartyPayment(db *sql.DB, partyID int, paymentStatus string) (*models.Party, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE parties SET payment_status = ? WHERE id = ?`, paymentStatus, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	transactionStatus := "pending"
	if paymentStatus == "paid" {
		transactionStatus = "paid"
	}

	_, err = tx.Exec(`
		UPDATE transactions SET status = ?
		WHERE party_id = ? AND type = 'income' AND status != 'cancelled'`,
		transactionStatus, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to update linked transactions: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment update: %w", err)
	}

	return GetParty(db, partyID)
}

func DeleteParty(db *sql.DB, partyID int) error {
	result, err := db.Exec(`DELETE FROM parties WHERE id = ?`, partyID)
	if err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
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

// PartyStats aggregates bookings in a single round trip.
type PartyStats struct {
	Total             int   `json:"total"`
	Pending           int   `json:"pending"`
	Confirmed         int   `json:"confirmed"`
	Assembled         int   `json:"assembled"`
	Collect           int   `json:"collect"`
	Finished          int   `json:"finished"`
	Unpaid            int   `json:"unpaid"`
	Deposit           int   `json:"deposit"`
	Paid              int   `json:"paid"`
	TotalBookedCents  int64 `json:"total_booked_cents"`
	TotalPaidCents    int64 `json:"total_paid_cents"`
	TotalEntriesCents int64 `json:"total_entries_cents"`
}

func GetPartyStats(db *sql.DB, startDate, endDate string) (*PartyStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'assembled' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'collect' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'finished' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payment_status = 'unpaid' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payment_status = 'deposit' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(total_cents), 0),
			COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN total_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payment_status = 'deposit' THEN entry_cents ELSE 0 END), 0)
		FROM parties
		WHERE 1=1
	`
	var args []interface{}

	if startDate != "" {
		query += ` AND party_date >= ?`
		args = append(args, startDate)
	}
	if endDate != "" {
		query += ` AND party_date <= ?`
		args = append(args, endDate)
	}

	stats := &PartyStats{}
	err := db.QueryRow(query, args...).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Confirmed,
		&stats.Assembled,
		&stats.Collect,
		&stats.Finished,
		&stats.Unpaid,
		&stats.Deposit,
		&stats.Paid,
		&stats.TotalBookedCents,
		&stats.TotalPaidCents,
		&stats.TotalEntriesCents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get party stats: %w", err)
	}

	return stats, nil
}
