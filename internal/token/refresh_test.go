package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memoryRefreshStore implements RefreshStore with the same linearizable
// link-once semantics the Postgres store gets from its conditional UPDATE.
type memoryRefreshStore struct {
	mu      sync.Mutex
	records map[string]*RefreshTokenClaims
	revoked map[string]bool
}

func newMemoryRefreshStore() *memoryRefreshStore {
	return &memoryRefreshStore{
		records: make(map[string]*RefreshTokenClaims),
		revoked: make(map[string]bool),
	}
}

func (s *memoryRefreshStore) Create(ctx context.Context, record *RefreshTokenClaims) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *memoryRefreshStore) Get(ctx context.Context, id string) (*RefreshTokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	if s.revoked[id] {
		return nil, ErrRefreshTokenRevoked
	}
	clone := *record
	if record.ChildID != nil {
		childID := *record.ChildID
		clone.ChildID = &childID
	}
	return &clone, nil
}

func (s *memoryRefreshStore) LinkChild(ctx context.Context, id, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok || s.revoked[id] || record.ChildID != nil {
		return ErrRefreshTokenReused
	}
	record.ChildID = &childID
	return nil
}

func (s *memoryRefreshStore) Revoke(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[id] = true
	return nil
}

func TestRefreshManager_Create(t *testing.T) {
	fixed := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	store := newMemoryRefreshStore()
	manager := NewRefreshManager(store, nil, 30, func() time.Time { return fixed })

	record, err := manager.Create(context.Background(), "42", "a@b.com")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err := uuid.Parse(record.ID); err != nil {
		t.Errorf("ID %q is not a valid UUID: %v", record.ID, err)
	}
	if record.ChildID != nil {
		t.Errorf("ChildID = %v, want nil", *record.ChildID)
	}
	if record.User.ID != "42" || record.User.Email != "a@b.com" {
		t.Errorf("User = %+v, want {42 a@b.com}", record.User)
	}

	wantExpiry := fixed.Add(30 * time.Minute)
	if !record.ExpiredAt.Equal(wantExpiry) {
		t.Errorf("ExpiredAt = %v, want %v", record.ExpiredAt, wantExpiry)
	}

	if _, err := store.Get(context.Background(), record.ID); err != nil {
		t.Errorf("created record not persisted: %v", err)
	}
}

func TestRefreshManager_Rotate(t *testing.T) {
	store := newMemoryRefreshStore()
	manager := NewRefreshManager(store, nil, 30, nil)
	ctx := context.Background()

	original, err := manager.Create(ctx, "42", "a@b.com")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	successor, err := manager.Rotate(ctx, original.ID)
	if err != nil {
		t.Fatalf("Rotate() failed: %v", err)
	}

	if successor.ID == original.ID {
		t.Error("rotation must mint a new id")
	}
	if successor.User != original.User {
		t.Errorf("successor user = %+v, want %+v", successor.User, original.User)
	}
	if successor.ChildID != nil {
		t.Error("fresh successor must have nil ChildID")
	}

	updated, err := store.Get(ctx, original.ID)
	if err != nil {
		t.Fatalf("Get() of rotated record failed: %v", err)
	}
	if updated.ChildID == nil || *updated.ChildID != successor.ID {
		t.Errorf("original ChildID = %v, want %q", updated.ChildID, successor.ID)
	}
}

func TestRefreshManager_RotateReusedTokenRevokesChain(t *testing.T) {
	store := newMemoryRefreshStore()
	manager := NewRefreshManager(store, nil, 30, nil)
	ctx := context.Background()

	original, _ := manager.Create(ctx, "42", "a@b.com")
	successor, err := manager.Rotate(ctx, original.ID)
	if err != nil {
		t.Fatalf("first Rotate() failed: %v", err)
	}

	// Replaying the superseded token is a security event.
	_, err = manager.Rotate(ctx, original.ID)
	if !errors.Is(err, ErrRefreshTokenReused) {
		t.Fatalf("error = %v, want ErrRefreshTokenReused", err)
	}

	// The whole chain, tail included, must be dead afterwards.
	if _, err := store.Get(ctx, successor.ID); !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Errorf("tail Get() error = %v, want ErrRefreshTokenRevoked", err)
	}
}

func TestRefreshManager_RotateExpired(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	store := newMemoryRefreshStore()
	manager := NewRefreshManager(store, nil, 30, func() time.Time { return now })
	ctx := context.Background()

	record, _ := manager.Create(ctx, "42", "a@b.com")

	// Move the clock past the record's expiry.
	now = now.Add(31 * time.Minute)

	if _, err := manager.Rotate(ctx, record.ID); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Errorf("error = %v, want ErrRefreshTokenExpired", err)
	}
}

func TestRefreshManager_RotateUnknown(t *testing.T) {
	manager := NewRefreshManager(newMemoryRefreshStore(), nil, 30, nil)

	if _, err := manager.Rotate(context.Background(), uuid.New().String()); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Errorf("error = %v, want ErrRefreshTokenNotFound", err)
	}
}

func TestRefreshManager_ConcurrentRotationExactlyOneWins(t *testing.T) {
	store := newMemoryRefreshStore()
	manager := NewRefreshManager(store, nil, 30, nil)
	ctx := context.Background()

	record, err := manager.Create(ctx, "42", "a@b.com")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	const redeemers = 8
	results := make(chan error, redeemers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := manager.Rotate(ctx, record.ID)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var successes, reuses int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrRefreshTokenReused), errors.Is(err, ErrRefreshTokenRevoked):
			reuses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if reuses != redeemers-1 {
		t.Errorf("reuse reports = %d, want %d", reuses, redeemers-1)
	}
}

func TestRefreshManager_InvalidateIdempotent(t *testing.T) {
	store := newMemoryRefreshStore()
	manager := NewRefreshManager(store, nil, 30, nil)
	ctx := context.Background()

	record, _ := manager.Create(ctx, "42", "a@b.com")

	if err := manager.Invalidate(ctx, record.ID); err != nil {
		t.Fatalf("Invalidate() failed: %v", err)
	}
	if err := manager.Invalidate(ctx, record.ID); err != nil {
		t.Errorf("second Invalidate() failed: %v", err)
	}
	if err := manager.Invalidate(ctx, uuid.New().String()); err != nil {
		t.Errorf("Invalidate() of unknown id failed: %v", err)
	}

	if _, err := manager.Rotate(ctx, record.ID); !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Errorf("Rotate() after Invalidate error = %v, want ErrRefreshTokenRevoked", err)
	}
}
