package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrEmailTaken is returned when a registration collides with an existing
// email. Detected from the unique constraint rather than a pre-check, so
// two concurrent registrations cannot both pass.
var ErrEmailTaken = errors.New("email already registered")

// Repository handles user data operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the stored record.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string) (*User, error) {
	var user User
	query := `INSERT INTO users (email, password_hash, name, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())
			  RETURNING id, email, password_hash, name, last_login_at, created_at, updated_at`

	err := r.db.GetContext(ctx, &user, query, email, passwordHash, name)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// FindByEmail finds a user by email address
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, email, password_hash, name, last_login_at, created_at, updated_at
			  FROM users
			  WHERE email = $1`

	err := r.db.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &user, nil
}

// FindByID finds a user by ID
func (r *Repository) FindByID(ctx context.Context, id int) (*User, error) {
	var user User
	query := `SELECT id, email, password_hash, name, last_login_at, created_at, updated_at
			  FROM users
			  WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return &user, nil
}

// UpdateLastLoginAt updates the last_login_at timestamp
func (r *Repository) UpdateLastLoginAt(ctx context.Context, userID int) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
