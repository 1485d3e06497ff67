package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// ErrMalformed marks a payload that cannot be restored into a valid cart.
var ErrMalformed = errors.New("malformed cart state")

type stateRecord struct {
	Items           []itemRecord            `json:"items"`
	DeliveryAddress *domain.DeliveryAddress `json:"deliveryAddress,omitempty"`
	DeliveryFee     json.Number             `json:"deliveryFee"`
}

type itemRecord struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	UnitPrice       json.Number `json:"unitPrice"`
	ImageRef        string      `json:"imageRef,omitempty"`
	Quantity        int         `json:"quantity"`
	DiscountPercent *int        `json:"discountPercent,omitempty"`
	ColorVariant    *string     `json:"colorVariant,omitempty"`
}

// Encode serializes a cart state. Money is written as JSON numbers.
func Encode(state domain.CartState) ([]byte, error) {
	rec := stateRecord{
		Items:           make([]itemRecord, 0, len(state.Items)),
		DeliveryAddress: state.DeliveryAddress,
		DeliveryFee:     json.Number(state.DeliveryFee.String()),
	}
	for _, it := range state.Items {
		rec.Items = append(rec.Items, itemRecord{
			ID:              it.ID,
			Title:           it.Title,
			UnitPrice:       json.Number(it.UnitPrice.String()),
			ImageRef:        it.ImageRef,
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
			ColorVariant:    it.ColorVariant,
		})
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return b, nil
}

// Decode restores a cart state, rejecting anything that violates cart
// invariants with ErrMalformed.
func Decode(payload []byte) (domain.CartState, error) {
	var rec stateRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.CartState{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	fee, err := decimal.NewFromString(rec.DeliveryFee.String())
	if err != nil {
		return domain.CartState{}, fmt.Errorf("%w: deliveryFee[%s]: %v", ErrMalformed, rec.DeliveryFee, err)
	}
	if fee.IsNegative() {
		return domain.CartState{}, fmt.Errorf("%w: negative deliveryFee", ErrMalformed)
	}

	state := domain.CartState{
		Items:           make([]domain.LineItem, 0, len(rec.Items)),
		DeliveryAddress: rec.DeliveryAddress,
		DeliveryFee:     fee,
	}
	seen := make(map[string]struct{}, len(rec.Items))
	for _, r := range rec.Items {
		item, err := mapItemRecordToDomain(r)
		if err != nil {
			return domain.CartState{}, err
		}
		if _, dup := seen[item.ID]; dup {
			return domain.CartState{}, fmt.Errorf("%w: duplicate item id[%s]", ErrMalformed, item.ID)
		}
		seen[item.ID] = struct{}{}
		state.Items = append(state.Items, item)
	}
	return state, nil
}

func mapItemRecordToDomain(r itemRecord) (domain.LineItem, error) {
	if r.ID == "" {
		return domain.LineItem{}, fmt.Errorf("%w: item without id", ErrMalformed)
	}
	if r.Quantity < 1 {
		return domain.LineItem{}, fmt.Errorf("%w: item[%s] quantity %d", ErrMalformed, r.ID, r.Quantity)
	}
	price, err := decimal.NewFromString(r.UnitPrice.String())
	if err != nil || price.IsNegative() {
		return domain.LineItem{}, fmt.Errorf("%w: item[%s] unitPrice[%s]", ErrMalformed, r.ID, r.UnitPrice)
	}
	if p := r.DiscountPercent; p != nil && (*p < 0 || *p > 100) {
		return domain.LineItem{}, fmt.Errorf("%w: item[%s] discountPercent %d", ErrMalformed, r.ID, *p)
	}
	return domain.LineItem{
		ID:              r.ID,
		Title:           r.Title,
		UnitPrice:       price,
		ImageRef:        r.ImageRef,
		Quantity:        r.Quantity,
		DiscountPercent: r.DiscountPercent,
		ColorVariant:    r.ColorVariant,
	}, nil
}
