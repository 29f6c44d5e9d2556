package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayonscript/stayonscript/internal/identity"
	"github.com/stayonscript/stayonscript/internal/shared"
)

type stubRepo struct {
	principal *identity.Principal
	findErr   error
	sessions  map[string]string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.principal == nil || s.principal.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.principal, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, principalID string, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]string)
	}
	s.sessions[id] = principalID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticate(t *testing.T) {
	repo := &stubRepo{principal: &identity.Principal{
		ID:           "p-1",
		Email:        "alice@acme.example",
		PasswordHash: hashPassword(t, "correct horse"),
		IsActive:     true,
	}}
	svc := identity.NewService(repo)

	principal, err := svc.Authenticate(context.Background(), "alice@acme.example", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "p-1", principal.ID)

	_, err = svc.Authenticate(context.Background(), "alice@acme.example", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "bob@acme.example", "correct horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := &stubRepo{principal: &identity.Principal{
		ID:           "p-1",
		Email:        "alice@acme.example",
		PasswordHash: hashPassword(t, "correct horse"),
		IsActive:     false,
	}}

	_, err := identity.NewService(repo).Authenticate(context.Background(), "alice@acme.example", "correct horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
