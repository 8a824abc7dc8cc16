package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inkwell-labs/inkwell/internal/token"
	"github.com/inkwell-labs/inkwell/internal/user"
	apperrors "github.com/inkwell-labs/inkwell/pkg/errors"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, email, passwordHash, name string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[email]; exists {
		return nil, user.ErrEmailTaken
	}
	usr := &user.User{ID: r.nextID, Email: email, PasswordHash: passwordHash, Name: name}
	r.nextID++
	r.users[email] = usr
	return usr, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[email], nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, usr := range r.users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateLastLoginAt(ctx context.Context, userID int) error {
	return nil
}

type fakeRefreshStore struct {
	mu      sync.Mutex
	records map[string]*token.RefreshTokenClaims
	revoked map[string]bool
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{
		records: make(map[string]*token.RefreshTokenClaims),
		revoked: make(map[string]bool),
	}
}

func (s *fakeRefreshStore) Create(ctx context.Context, record *token.RefreshTokenClaims) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *fakeRefreshStore) Get(ctx context.Context, id string) (*token.RefreshTokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, token.ErrRefreshTokenNotFound
	}
	if s.revoked[id] {
		return nil, token.ErrRefreshTokenRevoked
	}
	clone := *record
	return &clone, nil
}

func (s *fakeRefreshStore) LinkChild(ctx context.Context, id, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok || s.revoked[id] || record.ChildID != nil {
		return token.ErrRefreshTokenReused
	}
	record.ChildID = &childID
	return nil
}

func (s *fakeRefreshStore) Revoke(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[id] = true
	return nil
}

var testKey *rsa.PrivateKey

func testServiceKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	if testKey == nil {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("failed to generate RSA key: %v", err)
		}
		testKey = key
	}
	return testKey
}

func newTestService(t *testing.T, now token.Clock) (*Service, *fakeUserRepo) {
	t.Helper()
	key := testServiceKey(t)
	users := newFakeUserRepo()
	service := NewService(
		users,
		token.NewMapper([]string{"app"}, 3600, now),
		token.NewSigner(key),
		token.NewJWTParser(&key.PublicKey),
		token.NewRefreshManager(newFakeRefreshStore(), nil, 43200, now),
		nil,
		nil,
		now,
	)
	return service, users
}

func registerTestUser(t *testing.T, service *Service, email, password string) *user.User {
	t.Helper()
	usr, err := service.Register(context.Background(), email, password, "Test User")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	return usr
}

func TestService_LoginRoundTrip(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	usr := registerTestUser(t, service, "a@b.com", "correct horse battery")

	result, err := service.Login(ctx, "a@b.com", "correct horse battery", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	if result.Token.Type != token.TokenTypeBearer {
		t.Errorf("Type = %q, want Bearer", result.Token.Type)
	}
	if result.Token.RefreshToken == "" {
		t.Error("RefreshToken is empty")
	}

	claims, err := service.ValidateAccessToken(result.Token.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() failed: %v", err)
	}

	if claims.User.ID != "1" {
		t.Errorf("claims User.ID = %q, want %q", claims.User.ID, "1")
	}
	if claims.User.Email != usr.Email {
		t.Errorf("claims User.Email = %q, want %q", claims.User.Email, usr.Email)
	}
	if len(claims.Audiences) != 1 || claims.Audiences[0] != "app" {
		t.Errorf("claims Audiences = %v, want [app]", claims.Audiences)
	}
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	registerTestUser(t, service, "a@b.com", "correct horse battery")

	_, unknownErr := service.Login(ctx, "nobody@b.com", "whatever", "127.0.0.1")
	_, wrongErr := service.Login(ctx, "a@b.com", "wrong password", "127.0.0.1")

	if !errors.Is(unknownErr, apperrors.ErrInvalidCredential) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredential", unknownErr)
	}
	if !errors.Is(wrongErr, apperrors.ErrInvalidCredential) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredential", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("errors differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

func TestService_RefreshRotatesAndDetectsReuse(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	registerTestUser(t, service, "a@b.com", "correct horse battery")
	result, err := service.Login(ctx, "a@b.com", "correct horse battery", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	first := result.Token.RefreshToken

	pair, err := service.Refresh(ctx, first)
	if err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if pair.RefreshToken == first {
		t.Error("Refresh() must rotate to a new refresh token id")
	}

	claims, err := service.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() of refreshed token failed: %v", err)
	}
	if claims.User.Email != "a@b.com" {
		t.Errorf("refreshed claims email = %q, want a@b.com", claims.User.Email)
	}

	// Replaying the first token after rotation is a security event.
	if _, err := service.Refresh(ctx, first); !errors.Is(err, apperrors.ErrTokenReused) {
		t.Errorf("replay error = %v, want ErrTokenReused", err)
	}

	// The reuse revoked the whole chain, the rotated token included.
	if _, err := service.Refresh(ctx, pair.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("chain tail error = %v, want ErrTokenRevoked", err)
	}
}

func TestService_LogoutIsIdempotent(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	registerTestUser(t, service, "a@b.com", "correct horse battery")
	result, err := service.Login(ctx, "a@b.com", "correct horse battery", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	if err := service.Logout(ctx, result.Token.RefreshToken); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if err := service.Logout(ctx, result.Token.RefreshToken); err != nil {
		t.Errorf("repeated Logout() failed: %v", err)
	}
	if err := service.Logout(ctx, "e5b2e1f6-0000-0000-0000-000000000000"); err != nil {
		t.Errorf("Logout() of unknown token failed: %v", err)
	}

	if _, err := service.Refresh(ctx, result.Token.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("Refresh() after Logout error = %v, want ErrTokenRevoked", err)
	}
}

func TestService_ValidateAccessTokenExpiry(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	service, _ := newTestService(t, clock)
	ctx := context.Background()

	registerTestUser(t, service, "a@b.com", "correct horse battery")
	result, err := service.Login(ctx, "a@b.com", "correct horse battery", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	if _, err := service.ValidateAccessToken(result.Token.AccessToken); err != nil {
		t.Fatalf("ValidateAccessToken() before expiry failed: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := service.ValidateAccessToken(result.Token.AccessToken); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Errorf("error after expiry = %v, want ErrTokenExpired", err)
	}
}

func TestService_ValidateAccessTokenGarbage(t *testing.T) {
	service, _ := newTestService(t, nil)

	for _, tokenString := range []string{"", "not.a.jwt", "x"} {
		if _, err := service.ValidateAccessToken(tokenString); !errors.Is(err, apperrors.ErrFailedDecoding) {
			t.Errorf("ValidateAccessToken(%q) error = %v, want ErrFailedDecoding", tokenString, err)
		}
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	registerTestUser(t, service, "a@b.com", "correct horse battery")

	if _, err := service.Register(ctx, "a@b.com", "another password", "Someone Else"); !errors.Is(err, apperrors.ErrEmailTaken) {
		t.Errorf("error = %v, want ErrEmailTaken", err)
	}
}
