package database

import (
	"database/sql"
	"fmt"
	"time"

	"festarent/internal/pricing"
)

// Dashboard is the pre-shaped payload the frontend charts consume. Field
// names are part of the existing client contract and must not change.
type Dashboard struct {
	StatCards    StatCards      `json:"stat_cards"`
	ChartMonthly []MonthlyPoint `json:"chart_monthly"`
	ChartStatus  []StatusSlice  `json:"chart_status"`
	ROITable     []ToyROIRow    `json:"tabela_roi_brinquedo"`
	BreakEven    []BreakEvenRow `json:"tabela_break_even"`
}

type StatCards struct {
	TotalClients      int   `json:"total_clients"`
	TotalToys         int   `json:"total_toys"`
	PartiesThisMonth  int   `json:"parties_this_month"`
	MonthIncomeCents  int64 `json:"month_income_cents"`
	MonthExpenseCents int64 `json:"month_expense_cents"`
	MonthNetCents     int64 `json:"month_net_cents"`
}

type MonthlyPoint struct {
	Month        string `json:"month"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
}

type StatusSlice struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ToyROIRow struct {
	ToyID                int     `json:"toy_id"`
	Name                 string  `json:"name"`
	InvestmentCents      int64   `json:"investment_cents"`
	RevenueCents         int64   `json:"revenue_cents"`
	MaintenanceCostCents int64   `json:"maintenance_cost_cents"`
	ROIPercent           float64 `json:"roi_percent"`
}

type BreakEvenRow struct {
	ToyID                  int    `json:"toy_id"`
	Name                   string `json:"name"`
	InvestmentCents        int64  `json:"investment_cents"`
	RevenueCents           int64  `json:"revenue_cents"`
	AvgMonthlyRevenueCents int64  `json:"avg_monthly_revenue_cents"`
	Label                  string `json:"label"`
}

// GetDashboard assembles the stat cards, the income/expense series for the
// last `months` months, the party status distribution, and the per-toy
// ROI and break-even tables.
func GetDashboard(db *sql.DB, months int, now time.Time) (*Dashboard, error) {
	dashboard := &Dashboard{}

	monthKey := now.Format("2006-01")
	monthStart := monthKey + "-01"
	monthEnd := monthKey + "-31"

	cardsQuery := `
		SELECT
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM toys),
			(SELECT COUNT(*) FROM parties WHERE party_date >= ? AND party_date <= ?),
			(SELECT COALESCE(SUM(CASE WHEN type = 'income' AND status = 'paid' THEN amount_cents ELSE 0 END), 0)
				FROM transactions WHERE transaction_date >= ? AND transaction_date <= ?),
			(SELECT COALESCE(SUM(CASE WHEN type = 'expense' AND status = 'paid' THEN amount_cents ELSE 0 END), 0)
				FROM transactions WHERE transaction_date >= ? AND transaction_date <= ?)
	`

	err := db.QueryRow(cardsQuery, monthStart, monthEnd, monthStart, monthEnd, monthStart, monthEnd).Scan(
		&dashboard.StatCards.TotalClients,
		&dashboard.StatCards.TotalToys,
		&dashboard.StatCards.PartiesThisMonth,
		&dashboard.StatCards.MonthIncomeCents,
		&dashboard.StatCards.MonthExpenseCents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stat cards: %w", err)
	}
	dashboard.StatCards.MonthNetCents = dashboard.StatCards.MonthIncomeCents - dashboard.StatCards.MonthExpenseCents

	chartMonthly, err := getMonthlySeries(db, months, now)
	if err != nil {
		return nil, err
	}
	dashboard.ChartMonthly = chartMonthly

	chartStatus, err := getStatusSlices(db)
	if err != nil {
		return nil, err
	}
	dashboard.ChartStatus = chartStatus

	roiRows, breakEvenRows, err := getToyReturnTables(db)
	if err != nil {
		return nil, err
	}
	dashboard.ROITable = roiRows
	dashboard.BreakEven = breakEvenRows

	return dashboard, nil
}

// getMonthlySeries returns one point per month for the trailing window,
// including months with no movement.
func getMonthlySeries(db *sql.DB, months int, now time.Time) ([]MonthlyPoint, error) {
	if months < 1 {
		months = 1
	}

	firstMonth := now.AddDate(0, -(months - 1), 0).Format("2006-01")

	query := `
		SELECT
			substr(transaction_date, 1, 7) AS month,
			COALESCE(SUM(CASE WHEN type = 'income' AND status = 'paid' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' AND status = 'paid' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE substr(transaction_date, 1, 7) >= ?
		GROUP BY month
	`

	rows, err := db.Query(query, firstMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly series: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[string]MonthlyPoint)
	for rows.Next() {
		var point MonthlyPoint
		if err := rows.Scan(&point.Month, &point.IncomeCents, &point.ExpenseCents); err != nil {
			return nil, fmt.Errorf("failed to scan monthly point: %w", err)
		}
		byMonth[point.Month] = point
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly series: %w", err)
	}

	series := make([]MonthlyPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0).Format("2006-01")
		point, ok := byMonth[month]
		if !ok {
			point = MonthlyPoint{Month: month}
		}
		series = append(series, point)
	}

	return series, nil
}

func getStatusSlices(db *sql.DB) ([]StatusSlice, error) {
	query := `
		SELECT status, COUNT(*)
		FROM parties
		GROUP BY status
		ORDER BY status
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query party status distribution: %w", err)
	}
	defer rows.Close()

	var slices []StatusSlice
	for rows.Next() {
		var slice StatusSlice
		if err := rows.Scan(&slice.Status, &slice.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status slice: %w", err)
		}
		slices = append(slices, slice)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status slices: %w", err)
	}

	return slices, nil
}

// getToyReturnTables pulls revenue, maintenance cost and active rental
// months per toy in one query, then derives ROI and break-even in Go.
// Maintenance cost is the sum of expense transactions tagged with the toy.
func getToyReturnTables(db *sql.DB) ([]ToyROIRow, []BreakEvenRow, error) {
	query := `
		SELECT
			t.id,
			t.name,
			COALESCE(t.purchase_price_cents, 0),
			COALESCE((
				SELECT SUM(x.amount_cents)
				FROM transactions x
				WHERE x.toy_id = t.id AND x.type = 'expense' AND x.status != 'cancelled'
			), 0) AS maintenance_cents,
			COALESCE((
				SELECT SUM(pt.quantity * pt.daily_rate_cents)
				FROM party_toys pt
				JOIN parties p ON p.id = pt.party_id
				WHERE pt.toy_id = t.id
			), 0) AS revenue_cents,
			COALESCE((
				SELECT COUNT(DISTINCT substr(p.party_date, 1, 7))
				FROM party_toys pt
				JOIN parties p ON p.id = pt.party_id
				WHERE pt.toy_id = t.id
			), 0) AS active_months
		FROM toys t
		ORDER BY t.name COLLATE NOCASE
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query toy return tables: %w", err)
	}
	defer rows.Close()

	var roiRows []ToyROIRow
	var breakEvenRows []BreakEvenRow

	for rows.Next() {
		var toyID int
		var name string
		var purchaseCents, maintenanceCents, revenueCents int64
		var activeMonths int

		err := rows.Scan(&toyID, &name, &purchaseCents, &maintenanceCents, &revenueCents, &activeMonths)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan toy returns: %w", err)
		}

		investment := purchaseCents + maintenanceCents

		roiRows = append(roiRows, ToyROIRow{
			ToyID:                toyID,
			Name:                 name,
			InvestmentCents:      investment,
			RevenueCents:         revenueCents,
			MaintenanceCostCents: maintenanceCents,
			ROIPercent:           pricing.ROIPercent(revenueCents, investment),
		})

		var avgMonthly int64
		if activeMonths > 0 {
			avgMonthly = revenueCents / int64(activeMonths)
		}

		breakEvenRows = append(breakEvenRows, BreakEvenRow{
			ToyID:                  toyID,
			Name:                   name,
			InvestmentCents:        investment,
			RevenueCents:           revenueCents,
			AvgMonthlyRevenueCents: avgMonthly,
			Label:                  pricing.BreakEvenLabel(investment, revenueCents, avgMonthly),
		})
	}

	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating toy returns: %w", err)
	}

	return roiRows, breakEvenRows, nil
}
