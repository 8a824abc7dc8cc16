package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrRefreshTokenNotFound means the id does not match any stored record.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrRefreshTokenRevoked means the token was invalidated by logout or a
	// prior security event.
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")

	// ErrRefreshTokenExpired means the token outlived its configured TTL.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrRefreshTokenReused means a token that was already rotated was
	// presented again. This signals potential token theft; the whole chain
	// is revoked when it is detected.
	ErrRefreshTokenReused = errors.New("refresh token reuse detected")
)

// RefreshStore is the durable record store for refresh tokens. Records must
// survive process restarts since refresh tokens outlive single requests.
type RefreshStore interface {
	Create(ctx context.Context, record *RefreshTokenClaims) error
	Get(ctx context.Context, id string) (*RefreshTokenClaims, error)

	// LinkChild sets the child pointer on a record whose child is still
	// unset. Exactly one of any number of concurrent callers may succeed;
	// the rest receive ErrRefreshTokenReused. This is the compare-and-swap
	// the rotation invariant rests on.
	LinkChild(ctx context.Context, id, childID string) error

	Revoke(ctx context.Context, id string) error
}

// RevocationCache is an optional fast-path lookup for revoked ids, checked
// before the durable store is consulted.
type RevocationCache interface {
	MarkRevoked(ctx context.Context, id string, until time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// RefreshManager creates, rotates and invalidates refresh tokens.
type RefreshManager struct {
	store       RefreshStore
	revocations RevocationCache
	ttl         time.Duration
	now         Clock
}

// NewRefreshManager creates a manager. ttlMinutes is the refresh token
// lifetime. The revocation cache may be nil. A nil clock falls back to
// time.Now.
func NewRefreshManager(store RefreshStore, revocations RevocationCache, ttlMinutes int, now Clock) *RefreshManager {
	if now == nil {
		now = time.Now
	}
	return &RefreshManager{
		store:       store,
		revocations: revocations,
		ttl:         time.Duration(ttlMinutes) * time.Minute,
		now:         now,
	}
}

// Create mints and persists a fresh refresh token for the user.
func (m *RefreshManager) Create(ctx context.Context, userID, email string) (*RefreshTokenClaims, error) {
	record := &RefreshTokenClaims{
		ID:        uuid.New().String(),
		User:      ClaimsUser{ID: userID, Email: email},
		ExpiredAt: m.now().Add(m.ttl),
		ChildID:   nil,
	}

	if err := m.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return record, nil
}

// Rotate redeems a refresh token: a successor record is created and the old
// record's child pointer is set to it. Presenting an already-rotated token
// revokes the remainder of its chain and returns ErrRefreshTokenReused.
// Under concurrent redemption of the same id exactly one caller wins.
func (m *RefreshManager) Rotate(ctx context.Context, id string) (*RefreshTokenClaims, error) {
	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(ctx, id)
		if err == nil && revoked {
			return nil, ErrRefreshTokenRevoked
		}
	}

	record, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if m.now().After(record.ExpiredAt) {
		return nil, ErrRefreshTokenExpired
	}

	if record.ChildID != nil {
		// Non-tail token presented again: someone is replaying a
		// superseded credential. Kill everything downstream of it.
		if err := m.revokeChain(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to revoke reused token chain: %w", err)
		}
		return nil, ErrRefreshTokenReused
	}

	successor := &RefreshTokenClaims{
		ID:        uuid.New().String(),
		User:      record.User,
		ExpiredAt: m.now().Add(m.ttl),
		ChildID:   nil,
	}

	if err := m.store.Create(ctx, successor); err != nil {
		return nil, fmt.Errorf("failed to store rotated refresh token: %w", err)
	}

	if err := m.store.LinkChild(ctx, record.ID, successor.ID); err != nil {
		// Lost the race or the record changed under us; the successor must
		// not remain redeemable.
		_ = m.store.Revoke(ctx, successor.ID)
		if errors.Is(err, ErrRefreshTokenReused) {
			return nil, ErrRefreshTokenReused
		}
		return nil, fmt.Errorf("failed to link rotated refresh token: %w", err)
	}

	return successor, nil
}

// Invalidate revokes a refresh token. Idempotent: unknown or already
// revoked ids are treated as success so logout never fails on a stale
// client state.
func (m *RefreshManager) Invalidate(ctx context.Context, id string) error {
	record, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrRefreshTokenNotFound) || errors.Is(err, ErrRefreshTokenRevoked) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.store.Revoke(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	if m.revocations != nil {
		_ = m.revocations.MarkRevoked(ctx, record.ID, record.ExpiredAt)
	}

	return nil
}

// revokeChain revokes the record and every descendant reachable through the
// child pointers.
func (m *RefreshManager) revokeChain(ctx context.Context, record *RefreshTokenClaims) error {
	for record != nil {
		if err := m.store.Revoke(ctx, record.ID); err != nil {
			return err
		}
		if m.revocations != nil {
			_ = m.revocations.MarkRevoked(ctx, record.ID, record.ExpiredAt)
		}

		if record.ChildID == nil {
			return nil
		}

		next, err := m.store.Get(ctx, *record.ChildID)
		if errors.Is(err, ErrRefreshTokenNotFound) || errors.Is(err, ErrRefreshTokenRevoked) {
			// Already revoked further down; nothing left to do.
			return nil
		}
		if err != nil {
			return err
		}
		record = next
	}
	return nil
}
