package database

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}

	// One connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	return db
}

func TestUserCreationAndAuthentication(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user, err := CreateUser(db, "Maria", "maria@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}

	if user.Name != "Maria" {
		t.Errorf("Expected name 'Maria', got %s", user.Name)
	}
	if user.OrganizationID == "" {
		t.Error("Organization ID should not be empty")
	}

	authUser, err := AuthenticateUser(db, "maria@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to authenticate user:", err)
	}
	if authUser.ID != user.ID {
		t.Errorf("Expected user ID %d, got %d", user.ID, authUser.ID)
	}

	_, err = AuthenticateUser(db, "maria@example.com", "wrongpassword")
	if err == nil {
		t.Error("Expected authentication to fail with wrong password")
	}
}

func TestUsersShareOrganization(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := CreateUser(db, "Maria", "maria@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create first user:", err)
	}

	second, err := CreateUser(db, "João", "joao@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create second user:", err)
	}

	if first.OrganizationID != second.OrganizationID {
		t.Errorf("Expected shared organization, got %s and %s",
			first.OrganizationID, second.OrganizationID)
	}
}

func TestAPITokenLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user, err := CreateUser(db, "Maria", "maria@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}

	token, err := CreateAPIToken(db, user.ID)
	if err != nil {
		t.Fatal("Failed to create API token:", err)
	}
	if token.Token == "" {
		t.Error("Token should not be empty")
	}

	tokenUser, err := GetUserByToken(db, token.Token)
	if err != nil {
		t.Fatal("Failed to resolve token:", err)
	}
	if tokenUser.ID != user.ID {
		t.Errorf("Expected user ID %d, got %d", user.ID, tokenUser.ID)
	}

	if err := DeleteAPIToken(db, token.Token); err != nil {
		t.Fatal("Failed to delete token:", err)
	}

	if _, err := GetUserByToken(db, token.Token); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after logout, got %v", err)
	}
}

func TestEnsureAdminUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	admin, err := EnsureAdminUser(db, "Admin", "admin@example.com", "secret123")
	if err != nil {
		t.Fatal("Failed to seed admin:", err)
	}
	if admin == nil || admin.Email != "admin@example.com" {
		t.Fatal("Expected admin user to be created")
	}

	// A second call must not create another account.
	again, err := EnsureAdminUser(db, "Admin", "admin@example.com", "secret123")
	if err != nil {
		t.Fatal("Unexpected error on repeated seed:", err)
	}
	if again != nil {
		t.Error("Expected no-op when users already exist")
	}
}

func TestEnsureAdminUserWithoutPassword(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	admin, err := EnsureAdminUser(db, "Admin", "admin@example.com", "")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if admin != nil {
		t.Error("Expected no admin without a configured password")
	}
}
