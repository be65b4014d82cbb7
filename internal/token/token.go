// Package token issues and resolves opaque bearer session tokens.
// Sessions live server-side with a TTL so sign-out revokes immediately.
package token

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is what a bearer token resolves to.
type Session struct {
	// UserID is the owner every data call gets scoped by.
	UserID string `json:"user_id"`
	// Email is the account's sign-in address.
	Email string `json:"email"`
	// IssuedAt is when the session was created.
	IssuedAt time.Time `json:"issued_at"`
}

// Store persists sessions keyed by token.
type Store interface {
	// Save stores the session under token for ttl.
	Save(ctx context.Context, token string, s Session, ttl time.Duration) error
	// Get resolves a token. A missing or expired token returns (nil, nil).
	Get(ctx context.Context, token string) (*Session, error)
	// Delete revokes the token. Revoking an unknown token is a no-op.
	Delete(ctx context.Context, token string) error
}

// New mints a fresh opaque token.
func New() string {
	return uuid.NewString()
}
