package database

import (
	"testing"

	"festarent/internal/models"
)

func TestTransactionCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	transaction, err := CreateTransaction(db, models.Transaction{
		Description:     "Aluguel de armazém",
		Type:            "expense",
		AmountCents:     120000,
		Category:        "infraestrutura",
		TransactionDate: "2026-08-01",
	})
	if err != nil {
		t.Fatal("Failed to create transaction:", err)
	}

	if transaction.Status != "pending" {
		t.Errorf("Expected default status 'pending', got %s", transaction.Status)
	}

	newStatus := "paid"
	updated, err := UpdateTransaction(db, transaction.ID, TransactionPatch{Status: &newStatus})
	if err != nil {
		t.Fatal("Failed to update transaction:", err)
	}
	if updated.Status != "paid" {
		t.Errorf("Expected status 'paid', got %s", updated.Status)
	}
	if updated.Description != "Aluguel de armazém" {
		t.Error("Partial update should not touch other fields")
	}

	if err := DeleteTransaction(db, transaction.ID); err != nil {
		t.Fatal("Failed to delete transaction:", err)
	}
	if _, err := GetTransaction(db, transaction.ID); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestTransactionFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	toy, err := CreateToy(db, models.Toy{Name: "Pula-pula"})
	if err != nil {
		t.Fatal("Failed to create toy:", err)
	}

	seed := []models.Transaction{
		{Description: "Entrada festa", Type: "income", AmountCents: 4500,
			Status: "paid", TransactionDate: "2026-08-10"},
		{Description: "Conserto do motor", Type: "expense", AmountCents: 8000,
			Status: "paid", TransactionDate: "2026-08-15", ToyID: &toy.ID},
		{Description: "Saldo festa", Type: "income", AmountCents: 10500,
			Status: "pending", TransactionDate: "2026-09-01"},
	}
	for _, tr := range seed {
		if _, err := CreateTransaction(db, tr); err != nil {
			t.Fatal("Failed to seed transaction:", err)
		}
	}

	expenses, err := ListTransactions(db, TransactionFilters{Type: "expense"})
	if err != nil {
		t.Fatal("Failed to filter by type:", err)
	}
	if len(expenses) != 1 || expenses[0].Description != "Conserto do motor" {
		t.Errorf("Expected only the repair, got %d rows", len(expenses))
	}

	byToy, err := ListTransactions(db, TransactionFilters{ToyID: toy.ID})
	if err != nil {
		t.Fatal("Failed to filter by toy:", err)
	}
	if len(byToy) != 1 {
		t.Errorf("Expected 1 toy-linked transaction, got %d", len(byToy))
	}

	august, err := ListTransactions(db, TransactionFilters{StartDate: "2026-08-01", EndDate: "2026-08-31"})
	if err != nil {
		t.Fatal("Failed to filter by date range:", err)
	}
	if len(august) != 2 {
		t.Errorf("Expected 2 transactions in August, got %d", len(august))
	}

	combined, err := ListTransactions(db, TransactionFilters{
		Type: "income", Status: "paid", StartDate: "2026-08-01", EndDate: "2026-08-31",
	})
	if err != nil {
		t.Fatal("Failed to combine filters:", err)
	}
	if len(combined) != 1 || combined[0].Description != "Entrada festa" {
		t.Errorf("Expected only the paid August income, got %d rows", len(combined))
	}
}

func TestTransactionStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seed := []models.Transaction{
		{Description: "Festa paga", Type: "income", AmountCents: 20000,
			Status: "paid", TransactionDate: "2026-08-10"},
		{Description: "Conserto", Type: "expense", AmountCents: 8000,
			Status: "paid", TransactionDate: "2026-08-15"},
		{Description: "Saldo pendente", Type: "income", AmountCents: 10500,
			Status: "pending", TransactionDate: "2026-08-20"},
		{Description: "Cancelada", Type: "income", AmountCents: 99999,
			Status: "cancelled", TransactionDate: "2026-08-25"},
	}
	for _, tr := range seed {
		if _, err := CreateTransaction(db, tr); err != nil {
			t.Fatal("Failed to seed transaction:", err)
		}
	}

	stats, err := GetTransactionStats(db, "", "")
	if err != nil {
		t.Fatal("Failed to get transaction stats:", err)
	}

	if stats.IncomeCents != 20000 {
		t.Errorf("Expected income 20000, got %d", stats.IncomeCents)
	}
	if stats.ExpenseCents != 8000 {
		t.Errorf("Expected expense 8000, got %d", stats.ExpenseCents)
	}
	if stats.NetCents != 12000 {
		t.Errorf("Expected net 12000, got %d", stats.NetCents)
	}
	if stats.PendingCount != 1 || stats.PendingIncomeCents != 10500 {
		t.Errorf("Unexpected pending figures: %+v", stats)
	}
}
