package user

import (
	"database/sql"
	"time"
)

// User represents the users table
type User struct {
	ID           int          `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Name         string       `db:"name" json:"name"`
	LastLoginAt  sql.NullTime `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}
