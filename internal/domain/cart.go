package domain

import "github.com/shopspring/decimal"

// DefaultDeliveryFee applies until a cart overrides it.
var DefaultDeliveryFee = decimal.RequireFromString("5.99")

// ProductDescriptor is the catalog view of a product as handed to a cart.
// It carries everything a LineItem has except the quantity.
type ProductDescriptor struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	ImageRef        string          `json:"imageRef,omitempty"`
	DiscountPercent *int            `json:"discountPercent,omitempty"`
	ColorVariant    *string         `json:"colorVariant,omitempty"`
}

// LineItem is one product entry in a cart. Quantity is always >= 1.
type LineItem struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	ImageRef        string          `json:"imageRef,omitempty"`
	Quantity        int             `json:"quantity"`
	DiscountPercent *int            `json:"discountPercent,omitempty"`
	ColorVariant    *string         `json:"colorVariant,omitempty"`
}

// DeliveryAddress is stored verbatim.
type DeliveryAddress struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// CartState is the aggregate root owned by a cart engine.
type CartState struct {
	Items           []LineItem       `json:"items"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
	DeliveryFee     decimal.Decimal  `json:"deliveryFee"`
}

// NewCartState returns the empty default cart.
func NewCartState() CartState {
	return CartState{
		Items:       []LineItem{},
		DeliveryFee: DefaultDeliveryFee,
	}
}

// Clone returns a deep copy; pointer fields are duplicated.
func (s CartState) Clone() CartState {
	out := CartState{
		Items:       make([]LineItem, 0, len(s.Items)),
		DeliveryFee: s.DeliveryFee,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, it.clone())
	}
	if s.DeliveryAddress != nil {
		addr := *s.DeliveryAddress
		out.DeliveryAddress = &addr
	}
	return out
}

func (it LineItem) clone() LineItem {
	out := it
	if it.DiscountPercent != nil {
		v := *it.DiscountPercent
		out.DiscountPercent = &v
	}
	if it.ColorVariant != nil {
		v := *it.ColorVariant
		out.ColorVariant = &v
	}
	return out
}

// NewLineItem builds a LineItem from a descriptor with the given quantity.
func NewLineItem(d ProductDescriptor, quantity int) LineItem {
	return LineItem{
		ID:              d.ID,
		Title:           d.Title,
		UnitPrice:       d.UnitPrice,
		ImageRef:        d.ImageRef,
		Quantity:        quantity,
		DiscountPercent: d.DiscountPercent,
		ColorVariant:    d.ColorVariant,
	}.clone()
}
