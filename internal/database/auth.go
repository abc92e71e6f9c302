package database

import (
	"database/sql"
	"fmt"

	"festarent/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func GetUserByID(db *sql.DB, userID int) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, organization_id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	err := db.QueryRow(query, userID).Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

func CreateUser(db *sql.DB, name, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Single-tenant install: every user shares the first organization ID,
	// minted when the first user is created.
	var organizationID string
	err = db.QueryRow(`SELECT organization_id FROM users ORDER BY id LIMIT 1`).Scan(&organizationID)
	if err == sql.ErrNoRows {
		organizationID = uuid.New().String()
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up organization: %w", err)
	}

	query := `
		INSERT INTO users (organization_id, name, email, password_hash)
		VALUES (?, ?, ?, ?)
	`

	result, err := db.Exec(query, organizationID, name, email, string(hashedPassword))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	return GetUserByID(db, int(id))
}

func AuthenticateUser(db *sql.DB, email, password string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, organization_id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = ?
	`

	err := db.QueryRow(query, email).Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, fmt.Errorf("invalid password")
	}

	return user, nil
}

// CreateAPIToken mints the opaque bearer token handed out at login. Tokens
// do not expire; logout deletes them.
func CreateAPIToken(db *sql.DB, userID int) (*models.APIToken, error) {
	token := uuid.New().String()

	query := `
		INSERT INTO api_tokens (token, user_id)
		VALUES (?, ?)
	`

	_, err := db.Exec(query, token, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create API token: %w", err)
	}

	return &models.APIToken{Token: token, UserID: userID}, nil
}

func GetUserByToken(db *sql.DB, token string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT u.id, u.organization_id, u.name, u.email, u.password_hash, u.created_at, u.updated_at
		FROM users u
		INNER JOIN api_tokens t ON u.id = t.user_id
		WHERE t.token = ?
	`

	err := db.QueryRow(query, token).Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	return user, nil
}

func DeleteAPIToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM api_tokens WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete API token: %w", err)
	}
	return nil
}

// EnsureAdminUser bootstraps the first account on an empty install. It does
// nothing when users already exist or when no password is configured.
func EnsureAdminUser(db *sql.DB, name, email, password string) (*models.User, error) {
	var userCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if userCount > 0 || password == "" {
		return nil, nil
	}

	return CreateUser(db, name, email, password)
}
