package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Listener receives a copy of the cart state after every mutation.
type Listener func(state domain.CartState)

// Engine owns a single cart. It is not safe for concurrent use; callers
// serialise access (see Service.Do).
type Engine struct {
	state     domain.CartState
	listeners map[int]Listener
	nextID    int
}

// NewEngine starts from the given state, or the empty default when nil.
func NewEngine(initial *domain.CartState) *Engine {
	state := domain.NewCartState()
	if initial != nil {
		state = initial.Clone()
	}
	return &Engine{
		state:     state,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for state change notifications. The returned func
// removes the registration.
func (e *Engine) Subscribe(fn Listener) func() {
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() { delete(e.listeners, id) }
}

func (e *Engine) changed() {
	for _, fn := range e.listeners {
		fn(e.state.Clone())
	}
}

func (e *Engine) indexOf(id string) int {
	for i, it := range e.state.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// AddItem increments the quantity of an existing line or appends a new one
// with quantity 1. On a repeat add the descriptor's other fields are ignored.
func (e *Engine) AddItem(d domain.ProductDescriptor) {
	if i := e.indexOf(d.ID); i >= 0 {
		e.state.Items[i].Quantity++
	} else {
		item := domain.NewLineItem(d, 1)
		item.DiscountPercent = clampPercent(item.DiscountPercent)
		e.state.Items = append(e.state.Items, item)
	}
	e.changed()
}

// RemoveItem drops the line with the given id. Unknown ids are ignored.
func (e *Engine) RemoveItem(id string) {
	if i := e.indexOf(id); i >= 0 {
		e.state.Items = append(e.state.Items[:i], e.state.Items[i+1:]...)
	}
	e.changed()
}

// UpdateQuantity sets an exact quantity; zero or less removes the line.
func (e *Engine) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		e.RemoveItem(id)
		return
	}
	if i := e.indexOf(id); i >= 0 {
		e.state.Items[i].Quantity = quantity
	}
	e.changed()
}

// Decrement lowers the quantity by one, removing the line at 1.
func (e *Engine) Decrement(id string) {
	i := e.indexOf(id)
	if i < 0 {
		e.changed()
		return
	}
	e.UpdateQuantity(id, e.state.Items[i].Quantity-1)
}

// ClearCart empties the items. Address and fee are kept.
func (e *Engine) ClearCart() {
	e.state.Items = []domain.LineItem{}
	e.changed()
}

func (e *Engine) SetDeliveryAddress(addr domain.DeliveryAddress) {
	e.state.DeliveryAddress = &addr
	e.changed()
}

func (e *Engine) SetDeliveryFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return domain.ErrNegativeFee
	}
	e.state.DeliveryFee = fee
	e.changed()
	return nil
}

func (e *Engine) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range e.state.Items {
		sum = sum.Add(LineTotal(it))
	}
	return sum
}

// DiscountTotal is informational; it is already reflected in Subtotal.
func (e *Engine) DiscountTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range e.state.Items {
		sum = sum.Add(LineSaving(it))
	}
	return sum
}

func (e *Engine) Total() decimal.Decimal {
	return e.Subtotal().Add(e.state.DeliveryFee)
}

// ItemCount is the number of units across all lines.
func (e *Engine) ItemCount() int {
	n := 0
	for _, it := range e.state.Items {
		n += it.Quantity
	}
	return n
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() domain.CartState {
	return e.state.Clone()
}
