package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              string    `json:"id"`
	Key             string    `json:"key"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	PriceCents      int64     `json:"priceCents"`
	Currency        string    `json:"currency"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	DiscountPercent *int      `json:"discountPercent,omitempty"`
	ColorVariant    *string   `json:"colorVariant,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Descriptor maps a catalog product to the shape a cart accepts.
func (p Product) Descriptor() ProductDescriptor {
	return ProductDescriptor{
		ID:              p.ID,
		Title:           p.Title,
		UnitPrice:       decimal.New(p.PriceCents, -2),
		ImageRef:        p.ImageURL,
		DiscountPercent: p.DiscountPercent,
		ColorVariant:    p.ColorVariant,
	}
}
