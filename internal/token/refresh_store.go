package token

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresRefreshStore persists refresh token records in the
// refresh_tokens table.
type PostgresRefreshStore struct {
	db *sqlx.DB
}

// NewPostgresRefreshStore creates a Postgres-backed refresh token store.
func NewPostgresRefreshStore(db *sqlx.DB) *PostgresRefreshStore {
	return &PostgresRefreshStore{db: db}
}

type refreshTokenRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Email     string         `db:"email"`
	ExpiresAt sql.NullTime   `db:"expires_at"`
	ChildID   sql.NullString `db:"child_id"`
	Revoked   bool           `db:"revoked"`
}

// Create inserts a new refresh token record.
func (s *PostgresRefreshStore) Create(ctx context.Context, record *RefreshTokenClaims) error {
	query := `INSERT INTO refresh_tokens (id, user_id, email, expires_at, child_id, revoked)
			  VALUES ($1, $2, $3, $4, NULL, FALSE)`

	_, err := s.db.ExecContext(ctx, query, record.ID, record.User.ID, record.User.Email, record.ExpiredAt)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// Get loads a refresh token record by id.
func (s *PostgresRefreshStore) Get(ctx context.Context, id string) (*RefreshTokenClaims, error) {
	var row refreshTokenRow
	query := `SELECT id, user_id, email, expires_at, child_id, revoked
			  FROM refresh_tokens
			  WHERE id = $1`

	err := s.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	if row.Revoked {
		return nil, ErrRefreshTokenRevoked
	}

	record := &RefreshTokenClaims{
		ID:        row.ID,
		User:      ClaimsUser{ID: row.UserID, Email: row.Email},
		ExpiredAt: row.ExpiresAt.Time,
	}
	if row.ChildID.Valid {
		childID := row.ChildID.String
		record.ChildID = &childID
	}

	return record, nil
}

// LinkChild sets the child pointer if and only if it is still unset. The
// WHERE clause is the compare-and-swap: with two concurrent redemptions of
// the same token exactly one UPDATE matches a row.
func (s *PostgresRefreshStore) LinkChild(ctx context.Context, id, childID string) error {
	query := `UPDATE refresh_tokens
			  SET child_id = $2
			  WHERE id = $1 AND child_id IS NULL AND revoked = FALSE`

	result, err := s.db.ExecContext(ctx, query, id, childID)
	if err != nil {
		return fmt.Errorf("failed to link refresh token child: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRefreshTokenReused
	}

	return nil
}

// Revoke marks a record revoked. Revoking an already revoked or missing
// record is not an error.
func (s *PostgresRefreshStore) Revoke(ctx context.Context, id string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
