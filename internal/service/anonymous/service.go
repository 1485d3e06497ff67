package anonymous

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultTTL = 24 * time.Hour

// Service issues bearer tokens for anonymous shopping sessions. Each token
// maps to the session id that owns a cart.
type Service struct {
	tokens token.Repository
	ttl    time.Duration
	now    func() time.Time
}

func New(tokens token.Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		tokens: tokens,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue starts a new session.
func (s *Service) Issue(ctx context.Context) (accessToken, sessionID string, err error) {
	accessToken, err = randomToken()
	if err != nil {
		return "", "", err
	}
	sessionID = uuid.NewString()
	err = s.tokens.Create(ctx, token.Token{
		Token:     accessToken,
		SessionID: sessionID,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		return "", "", fmt.Errorf("store token: %w", err)
	}
	return accessToken, sessionID, nil
}

func (s *Service) Lookup(ctx context.Context, accessToken string) (string, error) {
	t, err := s.tokens.Get(ctx, accessToken)
	if errors.Is(err, domain.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	if s.now().After(t.ExpiresAt) {
		return "", ErrInvalidToken
	}
	return t.SessionID, nil
}

// Revoke invalidates accessToken; the returned session id can then be forgotten.
func (s *Service) Revoke(ctx context.Context, accessToken string) (string, error) {
	t, err := s.tokens.Delete(ctx, accessToken)
	if errors.Is(err, domain.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return t.SessionID, nil
}

// Expired removes lapsed tokens and reports their session ids.
func (s *Service) Expired(ctx context.Context) ([]string, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
