package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/importer"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// Products is the demo catalog used for manual testing.
func Products(currency string) []domain.Product {
	return []domain.Product{
		{
			Key:          "demo-shirt",
			Title:        "Demo T-Shirt",
			Description:  "Soft cotton tee for demo purposes",
			PriceCents:   1999,
			Currency:     currency,
			ColorVariant: strPtr("Black"),
		},
		{
			Key:             "demo-mug",
			Title:           "Demo Mug",
			Description:     "Ceramic mug with demo logo",
			PriceCents:      1299,
			Currency:        currency,
			DiscountPercent: intPtr(15),
		},
		{
			Key:             "demo-hoodie",
			Title:           "Demo Hoodie",
			Description:     "Heavyweight fleece hoodie",
			PriceCents:      5400,
			Currency:        currency,
			DiscountPercent: intPtr(25),
			ColorVariant:    strPtr("Forest"),
		},
	}
}

// Apply upserts the demo catalog. It is idempotent because products are keyed.
func Apply(ctx context.Context, repo importer.ProductWriter, currency string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, p := range Products(currency) {
		saved, err := repo.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
		logger.Debug("seeded product", zap.String("key", saved.Key), zap.String("id", saved.ID))
	}
	return nil
}
