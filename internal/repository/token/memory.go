package token

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemory returns a process-local Repository. Tokens are lost on restart.
func NewMemory() Repository {
	return &memoryRepo{tokens: make(map[string]Token)}
}

func (r *memoryRepo) Create(_ context.Context, token Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.Token]; ok {
		return domain.ErrAlreadyExists
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryRepo) Get(_ context.Context, token string) (*Token, error) {
	r.mu.RLock()
	t, ok := r.tokens[token]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *memoryRepo) Delete(_ context.Context, token string) (*Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.tokens, token)
	return &t, nil
}

func (r *memoryRepo) DeleteExpired(_ context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []string
	for key, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, key)
			expired = append(expired, t.SessionID)
		}
	}
	return expired, nil
}
