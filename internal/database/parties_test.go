package database

import (
	"testing"

	"festarent/internal/models"
)

func TestPartyCreateWithToysAndEntry(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	client, err := CreateClient(db, models.Client{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatal("Failed to create client:", err)
	}

	toy, err := CreateToy(db, models.Toy{
		Name:              "Pula-pula",
		DailyRateCents:    15000,
		TotalQuantity:     2,
		AvailableQuantity: 2,
	})
	if err != nil {
		t.Fatal("Failed to create toy:", err)
	}

	party, err := CreateParty(db, models.Party{
		ClientID:        client.ID,
		PartyDate:       "2026-09-12",
		StartTime:       "14:00",
		DurationHours:   4,
		AssemblyTime:    "13:00",
		DisassemblyTime: "18:30",
		TotalCents:      15000,
		EntryCents:      4500,
	}, []models.PartyToy{
		{ToyID: toy.ID, Quantity: 1, DailyRateCents: 15000},
	}, &models.Transaction{
		Description:     "Entrada - festa de Ana",
		Type:            "income",
		AmountCents:     4500,
		Category:        "entrada",
		Status:          "pending",
		TransactionDate: "2026-09-12",
	})
	if err != nil {
		t.Fatal("Failed to create party:", err)
	}

	if party.Status != "pending" || party.PaymentStatus != "unpaid" {
		t.Errorf("Unexpected defaults: %s / %s", party.Status, party.PaymentStatus)
	}
	if len(party.Toys) != 1 {
		t.Fatalf("Expected 1 booked toy, got %d", len(party.Toys))
	}
	if party.Toys[0].DailyRateCents != 15000 {
		t.Error("Booked rate should be captured on the link row")
	}
	if party.Toys[0].Toy == nil || party.Toys[0].Toy.Name != "Pula-pula" {
		t.Error("Booked toy should carry the catalog record")
	}

	transactions, err := ListTransactions(db, TransactionFilters{PartyID: party.ID})
	if err != nil {
		t.Fatal("Failed to list transactions:", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 linked transaction, got %d", len(transactions))
	}
	if transactions[0].AmountCents != 4500 || transactions[0].Type != "income" {
		t.Errorf("Unexpected entry transaction: %+v", transactions[0])
	}
	if transactions[0].ClientID == nil || *transactions[0].ClientID != client.ID {
		t.Error("Entry transaction should link back to the client")
	}
}

func TestPartyUpdateReplacesToys(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	client, err := CreateClient(db, models.Client{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatal("Failed to create client:", err)
	}

	first, err := CreateToy(db, models.Toy{Name: "Pula-pula", DailyRateCents: 15000})
	if err != nil {
		t.Fatal("Failed to create toy:", err)
	}
	second, err := CreateToy(db, models.Toy{Name: "Piscina", DailyRateCents: 8000})
	if err != nil {
		t.Fatal("Failed to create toy:", err)
	}

	party, err := CreateParty(db, models.Party{
		ClientID:        client.ID,
		PartyDate:       "2026-09-12",
		StartTime:       "14:00",
		DurationHours:   4,
		AssemblyTime:    "13:00",
		DisassemblyTime: "18:30",
	}, []models.PartyToy{
		{ToyID: first.ID, Quantity: 1, DailyRateCents: 15000},
	}, nil)
	if err != nil {
		t.Fatal("Failed to create party:", err)
	}

	replacement := []models.PartyToy{
		{ToyID: second.ID, Quantity: 2, DailyRateCents: 8000},
	}
	updated, err := UpdateParty(db, party.ID, PartyPatch{Toys: &replacement})
	if err != nil {
		t.Fatal("Failed to update party:", err)
	}

	if len(updated.Toys) != 1 {
		t.Fatalf("Expected 1 booked toy after replacement, got %d", len(updated.Toys))
	}
	if updated.Toys[0].ToyID != second.ID || updated.Toys[0].Quantity != 2 {
		t.Errorf("Unexpected booking after replacement: %+v", updated.Toys[0])
	}
}

func TestPartyPaymentSyncsTransactions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	client, err := CreateClient(db, models.Client{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatal("Failed to create client:", err)
	}

	party, err := CreateParty(db, models.Party{
		ClientID:        client.ID,
		PartyDate:       "2026-09-12",
		StartTime:       "14:00",
		DurationHours:   4,
		AssemblyTime:    "13:00",
		DisassemblyTime: "18:30",
		TotalCents:      15000,
		EntryCents:      4500,
	}, nil, &models.Transaction{
		Description:     "Entrada",
		Type:            "income",
		AmountCents:     4500,
		Category:        "entrada",
		Status:          "pending",
		TransactionDate: "2026-09-12",
	})
	if err != nil {
		t.Fatal("Failed to create party:", err)
	}

	// A cancelled transaction must be left alone by payment changes.
	cancelled, err := CreateTransaction(db, models.Transaction{
		Description:     "Estorno",
		Type:            "income",
		AmountCents:     1000,
		Status:          "cancelled",
		TransactionDate: "2026-09-12",
		PartyID:         &party.ID,
	})
	if err != nil {
		t.Fatal("Failed to create cancelled transaction:", err)
	}

	paid, err := UpdatePartyPayment(db, party.ID, "paid")
	if err != nil {
		t.Fatal("Failed to update payment:", err)
	}
	if paid.PaymentStatus != "paid" {
		t.Errorf("Expected payment status 'paid', got %s", paid.PaymentStatus)
	}

	transactions, err := ListTransactions(db, TransactionFilters{PartyID: party.ID})
	if err != nil {
		t.Fatal("Failed to list transactions:", err)
	}
	for _, tr := range transactions {
		if tr.ID == cancelled.ID {
			if tr.Status != "cancelled" {
				t.Error("Cancelled transaction should stay cancelled")
			}
			continue
		}
		if tr.Status != "paid" {
			t.Errorf("Expected linked transaction to be paid, got %s", tr.Status)
		}
	}

	// Reverting the payment sends live transactions back to pending.
	if _, err := UpdatePartyPayment(db, party.ID, "unpaid"); err != nil {
		t.Fatal("Failed to revert payment:", err)
	}

	transactions, err = ListTransactions(db, TransactionFilters{PartyID: party.ID, Status: "pending"})
	if err != nil {
		t.Fatal("Failed to list transactions:", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected 1 pending transaction after revert, got %d", len(transactions))
	}
}

func TestClientDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	client, err := CreateClient(db, models.Client{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatal("Failed to create client:", err)
	}

	party, err := CreateParty(db, models.Party{
		ClientID:        client.ID,
		PartyDate:       "2026-09-12",
		StartTime:       "14:00",
		DurationHours:   4,
		AssemblyTime:    "13:00",
		DisassemblyTime: "18:30",
	}, nil, &models.Transaction{
		Description:     "Entrada",
		Type:            "income",
		AmountCents:     4500,
		Status:          "pending",
		TransactionDate: "2026-09-12",
	})
	if err != nil {
		t.Fatal("Failed to create party:", err)
	}

	if err := DeleteClient(db, client.ID); err != nil {
		t.Fatal("Failed to delete client:", err)
	}

	// Parties cascade away with their owner.
	if _, err := GetParty(db, party.ID); err != ErrNotFound {
		t.Errorf("Expected party to cascade, got %v", err)
	}

	// The financial history survives, with its links nulled out.
	transactions, err := ListTransactions(db, TransactionFilters{})
	if err != nil {
		t.Fatal("Failed to list transactions:", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected transaction to survive, got %d rows", len(transactions))
	}
	if transactions[0].PartyID != nil || transactions[0].ClientID != nil {
		t.Error("Expected party and client links to be nulled")
	}
}

func TestPartyStatsWindow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	client, err := CreateClient(db, models.Client{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatal("Failed to create client:", err)
	}

	seed := []models.Party{
		{ClientID: client.ID, PartyDate: "2026-09-12", StartTime: "14:00", DurationHours: 4,
			AssemblyTime: "13:00", DisassemblyTime: "18:30",
			Status: "confirmed", PaymentStatus: "paid", TotalCents: 20000},
		{ClientID: client.ID, PartyDate: "2026-09-20", StartTime: "10:00", DurationHours: 4,
			AssemblyTime: "09:00", DisassemblyTime: "14:30",
			Status: "pending", PaymentStatus: "deposit", TotalCents: 10000, EntryCents: 3000},
		{ClientID: client.ID, PartyDate: "2026-10-05", StartTime: "15:00", DurationHours: 4,
			AssemblyTime: "14:00", DisassemblyTime: "19:30",
			Status: "finished", PaymentStatus: "paid", TotalCents: 5000},
	}
	for _, p := range seed {
		if _, err := CreateParty(db, p, nil, nil); err != nil {
			t.Fatal("Failed to seed party:", err)
		}
	}

	stats, err := GetPartyStats(db, "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatal("Failed to get party stats:", err)
	}

	if stats.Total != 2 {
		t.Errorf("Expected 2 parties in September, got %d", stats.Total)
	}
	if stats.Confirmed != 1 || stats.Pending != 1 {
		t.Errorf("Unexpected status counts: %+v", stats)
	}
	if stats.TotalBookedCents != 30000 {
		t.Errorf("Expected 30000 booked, got %d", stats.TotalBookedCents)
	}
	if stats.TotalPaidCents != 20000 {
		t.Errorf("Expected 20000 paid, got %d", stats.TotalPaidCents)
	}
	if stats.TotalEntriesCents != 3000 {
		t.Errorf("Expected 3000 in held entries, got %d", stats.TotalEntriesCents)
	}
}
