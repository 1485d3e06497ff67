package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartState(t *testing.T) {
	s := NewCartState()
	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)
	assert.Nil(t, s.DeliveryAddress)
	assert.Equal(t, "5.99", s.DeliveryFee.String())
}

func TestCloneIsDeep(t *testing.T) {
	pct, color := 10, "Red"
	s := CartState{
		Items: []LineItem{{
			ID: "a", UnitPrice: decimal.NewFromInt(3), Quantity: 1,
			DiscountPercent: &pct, ColorVariant: &color,
		}},
		DeliveryAddress: &DeliveryAddress{Name: "n"},
		DeliveryFee:     decimal.NewFromInt(1),
	}

	c := s.Clone()
	c.Items[0].Quantity = 5
	*c.Items[0].DiscountPercent = 50
	*c.Items[0].ColorVariant = "Blue"
	c.DeliveryAddress.Name = "changed"

	assert.Equal(t, 1, s.Items[0].Quantity)
	assert.Equal(t, 10, *s.Items[0].DiscountPercent)
	assert.Equal(t, "Red", *s.Items[0].ColorVariant)
	assert.Equal(t, "n", s.DeliveryAddress.Name)
}

func TestCloneNilItems(t *testing.T) {
	c := CartState{}.Clone()
	assert.NotNil(t, c.Items)
	assert.Nil(t, c.DeliveryAddress)
}

func TestNewLineItemCopiesPointers(t *testing.T) {
	pct := 20
	d := ProductDescriptor{ID: "a", Title: "A", UnitPrice: decimal.NewFromInt(9), DiscountPercent: &pct}

	it := NewLineItem(d, 3)
	pct = 90

	assert.Equal(t, 3, it.Quantity)
	require.NotNil(t, it.DiscountPercent)
	assert.Equal(t, 20, *it.DiscountPercent)
	assert.Nil(t, it.ColorVariant)
}

func TestProductDescriptor(t *testing.T) {
	pct := 15
	p := Product{ID: "p1", Title: "Mug", PriceCents: 1299, ImageURL: "mug.png", DiscountPercent: &pct}

	d := p.Descriptor()
	assert.Equal(t, "p1", d.ID)
	assert.Equal(t, "Mug", d.Title)
	assert.True(t, decimal.RequireFromString("12.99").Equal(d.UnitPrice))
	assert.Equal(t, "mug.png", d.ImageRef)
	assert.Equal(t, 15, *d.DiscountPercent)
}
