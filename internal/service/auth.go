// Package service provides the business logic between the HTTP handlers
// and the stores: authentication, record validation and defaulting,
// document blob pairing, dashboard aggregation, and search.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexora/lexora/internal/apperr"
	"github.com/lexora/lexora/internal/models"
	"github.com/lexora/lexora/internal/password"
	"github.com/lexora/lexora/internal/token"
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// EmailExists returns true if an account with the given email exists.
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateUser creates a new account row.
	CreateUser(ctx context.Context, u models.User) error
	// GetByEmail fetches an account by email; (nil, nil) when missing.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID fetches an account by id; (nil, nil) when missing.
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService implements sign-up, sign-in, sign-out, and session
// resolution on top of a user repository and a session store.
type AuthService struct {
	repo       UserRepository
	sessions   token.Store
	sessionTTL time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo UserRepository, sessions token.Store, sessionTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, sessions: sessions, sessionTTL: sessionTTL}
}

// SignUp validates the registration input, hashes the password, and
// persists the account. A taken email reports a conflict.
func (s *AuthService) SignUp(ctx context.Context, email, pass, name string) (*models.User, error) {
	fields := map[string]string{}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(pass) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Backend("check email", err)
	}
	if exists {
		return nil, apperr.Conflict(fmt.Sprintf("email %s is already registered", email))
	}

	hash, err := password.Hash(pass)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, apperr.Backend("create user", err)
	}
	return &user, nil
}

// SignIn verifies the credentials and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, pass string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.Backend("load user", err)
	}
	if user == nil {
		return "", nil, apperr.NotFound("invalid email or password")
	}

	ok, err := password.Verify(pass, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", nil, apperr.NotFound("invalid email or password")
	}

	tok := token.New()
	sess := token.Session{UserID: user.ID, Email: user.Email, IssuedAt: time.Now().UTC()}
	if err := s.sessions.Save(ctx, tok, sess, s.sessionTTL); err != nil {
		return "", nil, apperr.Backend("save session", err)
	}
	return tok, user, nil
}

// SignOut revokes the session token. Revoking an unknown token succeeds.
func (s *AuthService) SignOut(ctx context.Context, tok string) error {
	if err := s.sessions.Delete(ctx, tok); err != nil {
		return apperr.Backend("delete session", err)
	}
	return nil
}

// CurrentUser resolves a session token to its account. A missing or
// expired session returns (nil, nil).
func (s *AuthService) CurrentUser(ctx context.Context, tok string) (*models.User, error) {
	sess, err := s.sessions.Get(ctx, tok)
	if err != nil {
		return nil, apperr.Backend("load session", err)
	}
	if sess == nil {
		return nil, nil
	}
	user, err := s.repo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Backend("load user", err)
	}
	return user, nil
}
