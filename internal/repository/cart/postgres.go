package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres stores cart payloads in the cart_states table. Concurrent
// writers to the same key resolve as last-writer-wins.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresStore{pool: pool, logger: logger}
}

func (s *postgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT payload
FROM cart_states
WHERE session_key = $1
`
	var payload []byte
	if err := s.pool.QueryRow(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("cart store: load", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return payload, nil
}

func (s *postgresStore) Save(ctx context.Context, key string, payload []byte) error {
	const q = `
INSERT INTO cart_states (session_key, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (session_key) DO UPDATE SET
    payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at
`
	if _, err := s.pool.Exec(ctx, q, key, payload); err != nil {
		s.logger.Error("cart store: save", zap.String("key", key), zap.Error(err))
		return err
	}
	s.logger.Debug("cart store: saved", zap.String("key", key), zap.Int("bytes", len(payload)))
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	const q = `
DELETE FROM cart_states
WHERE session_key = $1
`
	if _, err := s.pool.Exec(ctx, q, key); err != nil {
		s.logger.Error("cart store: delete", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
