package token

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, token Token) error {
	const q = `
INSERT INTO session_tokens (token, session_id, expires_at)
VALUES ($1, $2, $3)
`
	_, err := r.pool.Exec(ctx, q, token.Token, token.SessionID, token.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Error("token repo: create", zap.String("session", token.SessionID), zap.Error(err))
		return err
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, token string) (*Token, error) {
	const q = `
SELECT token, session_id, expires_at, created_at
FROM session_tokens
WHERE token = $1
`
	return r.scanOne(r.pool.QueryRow(ctx, q, token))
}

func (r *postgresRepo) Delete(ctx context.Context, token string) (*Token, error) {
	const q = `
DELETE FROM session_tokens
WHERE token = $1
RETURNING token, session_id, expires_at, created_at
`
	return r.scanOne(r.pool.QueryRow(ctx, q, token))
}

func (r *postgresRepo) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	const q = `
DELETE FROM session_tokens
WHERE expires_at < $1
RETURNING session_id
`
	rows, err := r.pool.Query(ctx, q, now)
	if err != nil {
		r.logger.Error("token repo: delete expired", zap.Error(err))
		return nil, err
	}
	sessions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		r.logger.Error("token repo: collect expired", zap.Error(err))
		return nil, err
	}
	return sessions, nil
}

func (r *postgresRepo) scanOne(row pgx.Row) (*Token, error) {
	var out Token
	if err := row.Scan(&out.Token, &out.SessionID, &out.ExpiresAt, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("token repo: scan", zap.Error(err))
		return nil, err
	}
	return &out, nil
}
