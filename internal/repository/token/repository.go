package token

import (
	"context"
	"time"
)

// Token binds an opaque bearer token to the session owning a cart.
type Token struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	// Create fails with domain.ErrAlreadyExists on a token collision.
	Create(ctx context.Context, token Token) error
	// Get returns domain.ErrNotFound for unknown tokens, expired or not.
	Get(ctx context.Context, token string) (*Token, error)
	// Delete removes token and returns what was stored.
	Delete(ctx context.Context, token string) (*Token, error)
	// DeleteExpired removes tokens that lapsed before now and returns their session ids.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}
