package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora/internal/apperr"
	"github.com/lexora/lexora/internal/models"
	"github.com/lexora/lexora/internal/token"
)

// fakeUserRepo implements UserRepository in memory.
type fakeUserRepo struct {
	users map[string]models.User // by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := r.users[email]
	return ok, nil
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, u models.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := r.users[email]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func newAuth() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthService(repo, token.NewMemoryStore(), time.Hour), repo
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "password123", "")
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	require.Contains(t, apperr.FieldsOf(err), "email")

	_, err = svc.SignUp(ctx, "a@b.com", "short", "")
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	require.Contains(t, apperr.FieldsOf(err), "password")
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "jane@firm.com", "password123", "Jane")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "jane@firm.com", "password456", "")
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestSignInAndCurrentUser(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	created, err := svc.SignUp(ctx, "jane@firm.com", "password123", "Jane")
	require.NoError(t, err)

	tok, user, err := svc.SignIn(ctx, "jane@firm.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, created.ID, user.ID)

	resolved, err := svc.CurrentUser(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, "jane@firm.com", resolved.Email)
}

func TestSignInWrongPassword(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "jane@firm.com", "password123", "")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "jane@firm.com", "wrong-password")
	require.Error(t, err)
	_, _, err = svc.SignIn(ctx, "nobody@firm.com", "password123")
	require.Error(t, err)
}

func TestSignOutRevokesSession(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "jane@firm.com", "password123", "")
	require.NoError(t, err)
	tok, _, err := svc.SignIn(ctx, "jane@firm.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, tok))

	resolved, err := svc.CurrentUser(ctx, tok)
	require.NoError(t, err)
	require.Nil(t, resolved, "a revoked session must not resolve")

	// Revoking again stays a no-op.
	require.NoError(t, svc.SignOut(ctx, tok))
}
