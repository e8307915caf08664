package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

type mockRepo struct {
	accounts map[string]*Account
	sessions map[string]int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{accounts: make(map[string]*Account), sessions: make(map[string]int64)}
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	account, ok := m.accounts[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

func (m *mockRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, userAgent string) error {
	m.sessions[id] = userID
	return nil
}

func (m *mockRepo) DeleteSession(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func seedAccount(t *testing.T, repo *mockRepo, email, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.accounts[email] = &Account{
		ID:           1,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newMockRepo()
	seedAccount(t, repo, "anna@belpol.pl", "tajnehaslo", true)
	svc := NewService(repo)

	account, err := svc.Authenticate(context.Background(), "anna@belpol.pl", "tajnehaslo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newMockRepo()
	seedAccount(t, repo, "anna@belpol.pl", "tajnehaslo", true)
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "anna@belpol.pl", "zlehaslo")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Authenticate(context.Background(), "nikt@belpol.pl", "cokolwiek")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newMockRepo()
	seedAccount(t, repo, "anna@belpol.pl", "tajnehaslo", false)
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "anna@belpol.pl", "tajnehaslo")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.RegisterSession(ctx, "sess-1", 1, time.Now().Add(time.Hour), "10.0.0.1", "test"))
	assert.Contains(t, repo.sessions, "sess-1")

	require.NoError(t, svc.RemoveSession(ctx, "sess-1"))
	assert.NotContains(t, repo.sessions, "sess-1")
}
