package models

import (
	"time"
)

// Monetary amounts are integer centavos end-to-end, including in the JSON
// payloads. Dates travel as YYYY-MM-DD strings, times of day as HH:MM.

type User struct {
	ID             int       `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type APIToken struct {
	Token     string    `json:"token" db:"token"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Client struct {
	ID             int          `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	Email          string       `json:"email" db:"email"`
	Document       *string      `json:"document,omitempty" db:"document"`
	Phone          *string      `json:"phone,omitempty" db:"phone"`
	SecondaryPhone *string      `json:"secondary_phone,omitempty" db:"secondary_phone"`
	Address        *string      `json:"address,omitempty" db:"address"`
	City           *string      `json:"city,omitempty" db:"city"`
	State          *string      `json:"state,omitempty" db:"state"`
	ZipCode        *string      `json:"zip_code,omitempty" db:"zip_code"`
	Status         string       `json:"status" db:"status"`
	Notes          *string      `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
	Stats          *ClientStats `json:"stats,omitempty"`
}

// ClientStats is the per-client aggregate attached when includeStats is set.
type ClientStats struct {
	TotalParties     int     `json:"total_parties"`
	TotalBilledCents int64   `json:"total_billed_cents"`
	LastPartyDate    *string `json:"last_party_date,omitempty"`
}

type Toy struct {
	ID                 int       `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Category           string    `json:"category" db:"category"`
	Status             string    `json:"status" db:"status"`
	Condition          string    `json:"condition" db:"condition"`
	DailyRateCents     int64     `json:"daily_rate_cents" db:"daily_rate_cents"`
	ValueCents         int64     `json:"value_cents" db:"value_cents"`
	TotalQuantity      int       `json:"total_quantity" db:"total_quantity"`
	AvailableQuantity  int       `json:"available_quantity" db:"available_quantity"`
	PurchaseDate       *string   `json:"purchase_date,omitempty" db:"purchase_date"`
	PurchasePriceCents *int64    `json:"purchase_price_cents,omitempty" db:"purchase_price_cents"`
	InstallmentCount   *int      `json:"installment_count,omitempty" db:"installment_count"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

type Party struct {
	ID              int        `json:"id" db:"id"`
	ClientID        int        `json:"client_id" db:"client_id"`
	PartyDate       string     `json:"party_date" db:"party_date"`
	StartTime       string     `json:"start_time" db:"start_time"`
	DurationHours   int        `json:"duration_hours" db:"duration_hours"`
	AssemblyTime    string     `json:"assembly_time" db:"assembly_time"`
	DisassemblyTime string     `json:"disassembly_time" db:"disassembly_time"`
	Status          string     `json:"status" db:"status"`
	PaymentStatus   string     `json:"payment_status" db:"payment_status"`
	TotalCents      int64      `json:"total_cents" db:"total_cents"`
	EntryCents      int64      `json:"entry_cents" db:"entry_cents"`
	EntryOverridden bool       `json:"entry_overridden" db:"entry_overridden"`
	AdditionsCents  int64      `json:"additions_cents" db:"additions_cents"`
	DiscountsCents  int64      `json:"discounts_cents" db:"discounts_cents"`
	Address         *string    `json:"address,omitempty" db:"address"`
	City            *string    `json:"city,omitempty" db:"city"`
	State           *string    `json:"state,omitempty" db:"state"`
	ZipCode         *string    `json:"zip_code,omitempty" db:"zip_code"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	Client          *Client    `json:"client,omitempty"`
	Toys            []PartyToy `json:"toys,omitempty"`
}

// PartyToy links a booked toy to a party. The daily rate is captured at
// booking time so later catalog edits do not rewrite history.
type PartyToy struct {
	ID             int       `json:"id" db:"id"`
	PartyID        int       `json:"party_id" db:"party_id"`
	ToyID          int       `json:"toy_id" db:"toy_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	DailyRateCents int64     `json:"daily_rate_cents" db:"daily_rate_cents"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	Toy            *Toy      `json:"toy,omitempty"`
}

type Transaction struct {
	ID                int       `json:"id" db:"id"`
	Description       string    `json:"description" db:"description"`
	Type              string    `json:"type" db:"type"`
	AmountCents       int64     `json:"amount_cents" db:"amount_cents"`
	Category          string    `json:"category" db:"category"`
	Status            string    `json:"status" db:"status"`
	TransactionDate   string    `json:"transaction_date" db:"transaction_date"`
	PartyID           *int      `json:"party_id,omitempty" db:"party_id"`
	ClientID          *int      `json:"client_id,omitempty" db:"client_id"`
	ToyID             *int      `json:"toy_id,omitempty" db:"toy_id"`
	InstallmentNumber *int      `json:"installment_number,omitempty" db:"installment_number"`
	InstallmentTotal  *int      `json:"installment_total,omitempty" db:"installment_total"`
	Notes             *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Enum values accepted by the API. The schema carries matching CHECK
// constraints, the handlers validate before the database ever sees a row.
var (
	ClientStatuses      = []string{"active", "inactive", "vip"}
	ToyStatuses         = []string{"available", "rented", "maintenance", "damaged"}
	PartyStatuses       = []string{"pending", "confirmed", "assembled", "collect", "finished"}
	PaymentStatuses     = []string{"unpaid", "deposit", "paid"}
	TransactionTypes    = []string{"income", "expense"}
	TransactionStatuses = []string{"pending", "paid", "cancelled"}
)

func ValidEnum(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}
