package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get/Update/Delete functions when the row does
// not exist. Handlers map it to a 404; it is never a database failure.
var ErrNotFound = errors.New("record not found")

func Initialize(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			organization_id TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS api_tokens (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			document TEXT,
			phone TEXT,
			secondary_phone TEXT,
			address TEXT,
			city TEXT,
			state TEXT,
			zip_code TEXT,
			status TEXT NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'inactive', 'vip')),
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS toys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'available'
				CHECK (status IN ('available', 'rented', 'maintenance', 'damaged')),
			condition TEXT NOT NULL DEFAULT '',
			daily_rate_cents INTEGER NOT NULL DEFAULT 0,
			value_cents INTEGER NOT NULL DEFAULT 0,
			total_quantity INTEGER NOT NULL DEFAULT 1,
			available_quantity INTEGER NOT NULL DEFAULT 1
				CHECK (available_quantity >= 0 AND available_quantity <= total_quantity),
			purchase_date TEXT,
			purchase_price_cents INTEGER,
			installment_count INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS parties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			party_date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			duration_hours INTEGER NOT NULL DEFAULT 4,
			assembly_time TEXT NOT NULL DEFAULT '',
			disassembly_time TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'confirmed', 'assembled', 'collect', 'finished')),
			payment_status TEXT NOT NULL DEFAULT 'unpaid'
				CHECK (payment_status IN ('unpaid', 'deposit', 'paid')),
			total_cents INTEGER NOT NULL DEFAULT 0,
			entry_cents INTEGER NOT NULL DEFAULT 0,
			entry_overridden BOOLEAN NOT NULL DEFAULT FALSE,
			additions_cents INTEGER NOT NULL DEFAULT 0,
			discounts_cents INTEGER NOT NULL DEFAULT 0,
			address TEXT,
			city TEXT,
			state TEXT,
			zip_code TEXT,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS party_toys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			party_id INTEGER NOT NULL,
			toy_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			daily_rate_cents INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (party_id) REFERENCES parties(id) ON DELETE CASCADE,
			FOREIGN KEY (toy_id) REFERENCES toys(id) ON DELETE CASCADE,
			UNIQUE(party_id, toy_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
			amount_cents INTEGER NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'paid', 'cancelled')),
			transaction_date TEXT NOT NULL,
			party_id INTEGER,
			client_id INTEGER,
			toy_id INTEGER,
			installment_number INTEGER,
			installment_total INTEGER,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (party_id) REFERENCES parties(id) ON DELETE SET NULL,
			FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE SET NULL,
			FOREIGN KEY (toy_id) REFERENCES toys(id) ON DELETE SET NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_api_tokens_user_id ON api_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status)`,
		`CREATE INDEX IF NOT EXISTS idx_toys_status ON toys(status)`,
		`CREATE INDEX IF NOT EXISTS idx_toys_category ON toys(category)`,
		`CREATE INDEX IF NOT EXISTS idx_parties_client_id ON parties(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parties_party_date ON parties(party_date)`,
		`CREATE INDEX IF NOT EXISTS idx_parties_status ON parties(status)`,
		`CREATE INDEX IF NOT EXISTS idx_party_toys_party_id ON party_toys(party_id)`,
		`CREATE INDEX IF NOT EXISTS idx_party_toys_toy_id ON party_toys(toy_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_party_id ON transactions(party_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_client_id ON transactions(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_toy_id ON transactions(toy_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	if err := createUpdatedAtTriggers(db); err != nil {
		return fmt.Errorf("failed to create updated_at triggers: %w", err)
	}

	return nil
}

// createUpdatedAtTriggers keeps updated_at current on every UPDATE so that
// repositories can re-read rows after writes and return DB-computed values.
func createUpdatedAtTriggers(db *sql.DB) error {
	tables := []string{"users", "clients", "toys", "parties", "transactions"}

	for _, table := range tables {
		trigger := fmt.Sprintf(`
			CREATE TRIGGER IF NOT EXISTS trg_%s_updated_at
			AFTER UPDATE ON %s
			BEGIN
				UPDATE %s SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
			END`, table, table, table)

		if _, err := db.Exec(trigger); err != nil {
			return err
		}
	}

	return nil
}
