package database

import (
	"database/sql"
	"fmt"
	"strings"

	"festarent/internal/models"
)

type TransactionFilters struct {
	Type      string
	Status    string
	Category  string
	Search    string
	PartyID   int
	ClientID  int
	ToyID     int
	StartDate string
	EndDate   string
}

type TransactionPatch struct {
	Description       *string
	Type              *string
	AmountCents       *int64
	Category          *string
	Status            *string
	TransactionDate   *string
	PartyID           *int
	ClientID          *int
	ToyID             *int
	InstallmentNumber *int
	InstallmentTotal  *int
	Notes             *string
}

const transactionColumns = `id, description, type, amount_cents, category,
	status, transaction_date, party_id, client_id, toy_id,
	installment_number, installment_total, notes, created_at, updated_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	var partyID, clientID, toyID, installmentNumber, installmentTotal sql.NullInt64
	var notes sql.NullString

	err := row.Scan(
		&t.ID,
		&t.Description,
		&t.Type,
		&t.AmountCents,
		&t.Category,
		&t.Status,
		&t.TransactionDate,
		&partyID,
		&clientID,
		&toyID,
		&installmentNumber,
		&installmentTotal,
		&notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.PartyID = nullableInt(partyID)
	t.ClientID = nullableInt(clientID)
	t.ToyID = nullableInt(toyID)
	t.InstallmentNumber = nullableInt(installmentNumber)
	t.InstallmentTotal = nullableInt(installmentTotal)
	t.Notes = nullableString(notes)

	return t, nil
}

func nullableInt(n sql.NullInt64) *int {
	if n.Valid {
		value := int(n.Int64)
		return &value
	}
	return nil
}

func ListTransactions(db *sql.DB, filters TransactionFilters) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []interface{}

	if filters.Type != "" {
		query += ` AND type = ?`
		args = append(args, filters.Type)
	}
	if filters.Status != "" {
		query += ` AND status = ?`
		args = append(args, filters.Status)
	}
	if filters.Category != "" {
		query += ` AND category = ?`
		args = append(args, filters.Category)
	}
	if filters.Search != "" {
		query += ` AND description LIKE ? COLLATE NOCASE`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.PartyID != 0 {
		query += ` AND party_id = ?`
		args = append(args, filters.PartyID)
	}
	if filters.ClientID != 0 {
		query += ` AND client_id = ?`
		args = append(args, filters.ClientID)
	}
	if filters.ToyID != 0 {
		query += ` AND toy_id = ?`
		args = append(args, filters.ToyID)
	}
	if filters.StartDate != "" {
		query += ` AND transaction_date >= ?`
		args = append(args, filters.StartDate)
	}
	if filters.EndDate != "" {
		query += ` AND transaction_date <= ?`
		args = append(args, filters.EndDate)
	}
	query += ` ORDER BY transaction_date DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *transaction)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func GetTransaction(db *sql.DB, transactionID int) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	transaction, err := scanTransaction(db.QueryRow(query, transactionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return transaction, nil
}

func CreateTransaction(db *sql.DB, transaction models.Transaction) (*models.Transaction, error) {
	if transaction.Status == "" {
		transaction.Status = "pending"
	}

	query := `
		INSERT INTO transactions (description, type, amount_cents, category,
			status, transaction_date, party_id, client_id, toy_id,
			installment_number, installment_total, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query, transaction.Description, transaction.Type,
		transaction.AmountCents, transaction.Category, transaction.Status,
		transaction.TransactionDate, transaction.PartyID, transaction.ClientID,
		transaction.ToyID, transaction.InstallmentNumber,
		transaction.InstallmentTotal, transaction.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	return GetTransaction(db, int(id))
}

func UpdateTransaction(db *sql.DB, transactionID int, patch TransactionPatch) (*models.Transaction, error) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.AmountCents != nil {
		add("amount_cents", *patch.AmountCents)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.TransactionDate != nil {
		add("transaction_date", *patch.TransactionDate)
	}
	if patch.PartyID != nil {
		add("party_id", *patch.PartyID)
	}
	if patch.ClientID != nil {
		add("client_id", *patch.ClientID)
	}
	if patch.ToyID != nil {
		add("toy_id", *patch.ToyID)
	}
	if patch.InstallmentNumber != nil {
		add("installment_number", *patch.InstallmentNumber)
	}
	if patch.InstallmentTotal != nil {
		add("installment_total", *patch.InstallmentTotal)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	if len(sets) == 0 {
		return GetTransaction(db, transactionID)
	}

	query := `UPDATE transactions SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, transactionID)

	result, err := db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return GetTransaction(db, transactionID)
}

func DeleteTransaction(db *sql.DB, transactionID int) error {
	result, err := db.Exec(`DELETE FROM transactions WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
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

// TransactionStats totals the ledger in a single query.
type TransactionStats struct {
	IncomeCents        int64 `json:"income_cents"`
	ExpenseCents       int64 `json:"expense_cents"`
	NetCents           int64 `json:"net_cents"`
	PendingCount       int   `json:"pending_count"`
	PendingIncomeCents int64 `json:"pending_income_cents"`
}

func GetTransactionStats(db *sql.DB, startDate, endDate string) (*TransactionStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' AND status = 'paid' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' AND status = 'paid' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'income' AND status = 'pending' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE 1=1
	`
	var args []interface{}

	if startDate != "" {
		query += ` AND transaction_date >= ?`
		args = append(args, startDate)
	}
	if endDate != "" {
		query += ` AND transaction_date <= ?`
		args = append(args, endDate)
	}

	stats := &TransactionStats{}
	err := db.QueryRow(query, args...).Scan(
		&stats.IncomeCents,
		&stats.ExpenseCents,
		&stats.PendingCount,
		&stats.PendingIncomeCents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction stats: %w", err)
	}

	stats.NetCents = stats.IncomeCents - stats.ExpenseCents
	return stats, nil
}
