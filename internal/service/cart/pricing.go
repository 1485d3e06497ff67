package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var one = decimal.NewFromInt(1)

func discountRate(item domain.LineItem) (decimal.Decimal, bool) {
	if item.DiscountPercent == nil || *item.DiscountPercent == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(*item.DiscountPercent)).Shift(-2), true
}

// EffectiveUnitPrice is the unit price after the item's discount, if any.
func EffectiveUnitPrice(item domain.LineItem) decimal.Decimal {
	rate, ok := discountRate(item)
	if !ok {
		return item.UnitPrice
	}
	return item.UnitPrice.Mul(one.Sub(rate))
}

// LineTotal is the discounted price of the whole line.
func LineTotal(item domain.LineItem) decimal.Decimal {
	return EffectiveUnitPrice(item).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// LineSaving is the amount saved on the line versus full price.
func LineSaving(item domain.LineItem) decimal.Decimal {
	rate, ok := discountRate(item)
	if !ok {
		return decimal.Zero
	}
	return item.UnitPrice.Mul(rate).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func clampPercent(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	switch {
	case v < 0:
		v = 0
	case v > 100:
		v = 100
	}
	return &v
}
