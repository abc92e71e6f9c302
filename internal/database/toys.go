package database

import (
	"database/sql"
	"fmt"
	"strings"

	"festarent/internal/models"
)

type ToyFilters struct {
	Status   string
	Category string
	Search   string
}

type ToyPatch struct {
	Name               *string
	Category           *string
	Status             *string
	Condition          *string
	DailyRateCents     *int64
	ValueCents         *int64
	TotalQuantity      *int
	AvailableQuantity  *int
	PurchaseDate       *string
	PurchasePriceCents *int64
	InstallmentCount   *int
}

const toyColumns = `id, name, category, status, condition, daily_rate_cents,
	value_cents, total_quantity, available_quantity, purchase_date,
	purchase_price_cents, installment_count, created_at, updated_at`

func scanToy(row interface{ Scan(...interface{}) error }) (*models.Toy, error) {
	toy := &models.Toy{}
	var purchaseDate sql.NullString
	var purchasePrice sql.NullInt64
	var installmentCount sql.NullInt64

	err := row.Scan(
		&toy.ID,
		&toy.Name,
		&toy.Category,
		&toy.Status,
		&toy.Condition,
		&toy.DailyRateCents,
		&toy.ValueCents,
		&toy.TotalQuantity,
		&toy.AvailableQuantity,
		&purchaseDate,
		&purchasePrice,
		&installmentCount,
		&toy.CreatedAt,
		&toy.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	toy.PurchaseDate = nullableString(purchaseDate)
	if purchasePrice.Valid {
		toy.PurchasePriceCents = &purchasePrice.Int64
	}
	if installmentCount.Valid {
		count := int(installmentCount.Int64)
		toy.InstallmentCount = &count
	}

	return toy, nil
}

func ListToys(db *sql.DB, filters ToyFilters) ([]models.Toy, error) {
	query := `SELECT ` + toyColumns + ` FROM toys WHERE 1=1`
	var args []interface{}

	if filters.Status != "" {
		query += ` AND status = ?`
		args = append(args, filters.Status)
	}
	if filters.Category != "" {
		query += ` AND category = ?`
		args = append(args, filters.Category)
	}
	if filters.Search != "" {
		query += ` AND name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+filters.Search+"%")
	}
	query += ` ORDER BY name COLLATE NOCASE`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query toys: %w", err)
	}
	defer rows.Close()

	var toys []models.Toy
	for rows.Next() {
		toy, err := scanToy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan toy: %w", err)
		}
		toys = append(toys, *toy)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating toys: %w", err)
	}

	return toys, nil
}

func GetToy(db *sql.DB, toyID int) (*models.Toy, error) {
	query := `SELECT ` + toyColumns + ` FROM toys WHERE id = ?`

	toy, err := scanToy(db.QueryRow(query, toyID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query toy: %w", err)
	}

	return toy, nil
}

func CreateToy(db *sql.DB, toy models.Toy) (*models.Toy, error) {
	if toy.Status == "" {
		toy.Status = "available"
	}
	if toy.TotalQuantity == 0 {
		toy.TotalQuantity = 1
	}

	query := `
		INSERT INTO toys (name, category, status, condition, daily_rate_cents,
			value_cents, total_quantity, available_quantity, purchase_date,
			purchase_price_cents, installment_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query, toy.Name, toy.Category, toy.Status,
		toy.Condition, toy.DailyRateCents, toy.ValueCents, toy.TotalQuantity,
		toy.AvailableQuantity, toy.PurchaseDate, toy.PurchasePriceCents,
		toy.InstallmentCount)
	if err != nil {
		return nil, fmt.Errorf("failed to create toy: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get toy ID: %w", err)
	}

	return GetToy(db, int(id))
}

func UpdateToy(db *sql.DB, toyID int, patch ToyPatch) (*models.Toy, error) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Condition != nil {
		add("condition", *patch.Condition)
	}
	if patch.DailyRateCents != nil {
		add("daily_rate_cents", *patch.DailyRateCents)
	}
	if patch.ValueCents != nil {
		add("value_cents", *patch.ValueCents)
	}
	if patch.TotalQuantity != nil {
		add("total_quantity", *patch.TotalQuantity)
	}
	if patch.AvailableQuantity != nil {
		add("available_quantity", *patch.AvailableQuantity)
	}
	if patch.PurchaseDate != nil {
		add("purchase_date", *patch.PurchaseDate)
	}
	if patch.PurchasePriceCents != nil {
		add("purchase_price_cents", *patch.PurchasePriceCents)
	}
	if patch.InstallmentCount != nil {
		add("installment_count", *patch.InstallmentCount)
	}

	if len(sets) == 0 {
		return GetToy(db, toyID)
	}

	query := `UPDATE toys SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, toyID)

	result, err := db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update toy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return GetToy(db, toyID)
}

func DeleteToy(db *sql.DB, toyID int) error {
	result, err := db.Exec(`DELETE FROM toys WHERE id = ?`, toyID)
	if err != nil {
		return fmt.Errorf("failed to delete toy: %w", err)
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

// ListAvailableToys returns catalog toys that still have unbooked units in
// the given date range. A toy is excluded once the quantity booked by
// non-finished parties overlapping [startDate, endDate] exhausts its
// available_quantity.
func ListAvailableToys(db *sql.DB, startDate, endDate string) ([]models.Toy, error) {
	query := `
		SELECT ` + toyColumns + `
		FROM toys t
		WHERE t.status = 'available'
		  AND t.available_quantity > COALESCE((
			SELECT SUM(pt.quantity)
			FROM party_toys pt
			JOIN parties p ON p.id = pt.party_id
			WHERE pt.toy_id = t.id
			  AND p.status != 'finished'
			  AND p.party_date >= ?
			  AND p.party_date <= ?
		  ), 0)
		ORDER BY t.name COLLATE NOCASE
	`

	rows, err := db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query available toys: %w", err)
	}
	defer rows.Close()

	var toys []models.Toy
	for rows.Next() {
		toy, err := scanToy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan available toy: %w", err)
		}
		toys = append(toys, *toy)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating available toys: %w", err)
	}

	return toys, nil
}

// ToyStats aggregates the catalog in a single query.
type ToyStats struct {
	Total               int   `json:"total"`
	Available           int   `json:"available"`
	Rented              int   `json:"rented"`
	Maintenance         int   `json:"maintenance"`
	Damaged             int   `json:"damaged"`
	TotalUnits          int   `json:"total_units"`
	InventoryValueCents int64 `json:"inventory_value_cents"`
}

func GetToyStats(db *sql.DB) (*ToyStats, error) {
	stats := &ToyStats{}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'rented' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'maintenance' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'damaged' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(total_quantity), 0),
			COALESCE(SUM(value_cents * total_quantity), 0)
		FROM toys
	`

	err := db.QueryRow(query).Scan(
		&stats.Total,
		&stats.Available,
		&stats.Rented,
		&stats.Maintenance,
		&stats.Damaged,
		&stats.TotalUnits,
		&stats.InventoryValueCents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get toy stats: %w", err)
	}

	return stats, nil
}
