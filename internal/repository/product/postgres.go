package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

const productColumns = `id::text, key, title, COALESCE(description, ''), price_cents, currency, COALESCE(image_url, ''), discount_percent, color_variant, created_at`

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at ASC, key ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("product repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE id::text = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product repo: not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (key, title, description, price_cents, currency, image_url, discount_percent, color_variant)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8)
ON CONFLICT (key) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url,
    discount_percent = EXCLUDED.discount_percent,
    color_variant = EXCLUDED.color_variant
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.Key,
		p.Title,
		p.Description,
		p.PriceCents,
		p.Currency,
		p.ImageURL,
		p.DiscountPercent,
		p.ColorVariant,
	))
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("key", p.Key), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: upserted", zap.String("key", res.Key), zap.String("id", res.ID))
	return &res, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Key,
		&p.Title,
		&p.Description,
		&p.PriceCents,
		&p.Currency,
		&p.ImageURL,
		&p.DiscountPercent,
		&p.ColorVariant,
		&p.CreatedAt,
	)
	return p, err
}
