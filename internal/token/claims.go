package token

import (
	"time"
)

// ClaimsUser identifies the subject of an access token. Built from a
// persisted user record at issuance time; never mutated afterwards.
type ClaimsUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Claims is the full semantic content of an access token, before signing
// and after parsing.
type Claims struct {
	User        ClaimsUser
	Audiences   []string
	IssuedAt    time.Time
	NotBeforeAt time.Time
	ExpiredAt   time.Time
}

// InvalidDate stands in for a timestamp claim that was absent from a parsed
// token. Year 0000 predates every real issuance time and is distinguishable
// from Go's zero time (year 0001), so "claim never issued" can be detected
// without making the timestamp fields optional.
var InvalidDate = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)

// RefreshTokenClaims is the stored refresh token record. ID is the opaque
// value handed to clients. ChildID is nil until the token is rotated; once
// set it points at the successor record, forming the rotation chain used
// for reuse detection.
type RefreshTokenClaims struct {
	ID        string     `json:"id"`
	User      ClaimsUser `json:"user"`
	ExpiredAt time.Time  `json:"expired_at"`
	ChildID   *string    `json:"child_id,omitempty"`
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	Type         string `json:"type"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "Bearer"

// NewTokenPair builds a Bearer token pair.
func NewTokenPair(accessToken, refreshToken string) *TokenPair {
	return &TokenPair{
		Type:         TokenTypeBearer,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
}
