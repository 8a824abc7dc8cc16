package token

import (
	"time"
)

// Clock supplies the current time. Injectable so issuance and expiry can be
// pinned in tests.
type Clock func() time.Time

// Mapper builds Claims for a user from the configured audience list and TTL.
type Mapper struct {
	audiences []string
	ttl       time.Duration
	now       Clock
}

// NewMapper creates a claims mapper. ttlSeconds is the access token lifetime.
// A nil clock falls back to time.Now.
func NewMapper(audiences []string, ttlSeconds int, now Clock) *Mapper {
	if now == nil {
		now = time.Now
	}
	return &Mapper{
		audiences: audiences,
		ttl:       time.Duration(ttlSeconds) * time.Second,
		now:       now,
	}
}

// Map builds the Claims for the given subject. IssuedAt and NotBeforeAt are
// backdated one second to absorb clock skew between issuance and the first
// verification by another host.
func (m *Mapper) Map(userID, email string) Claims {
	now := m.now()
	return Claims{
		User:        ClaimsUser{ID: userID, Email: email},
		Audiences:   m.audiences,
		IssuedAt:    now.Add(-time.Second),
		NotBeforeAt: now.Add(-time.Second),
		ExpiredAt:   now.Add(m.ttl),
	}
}
