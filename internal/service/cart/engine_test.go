package cart

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

var stateOpts = cmp.Options{
	cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) }),
	cmpopts.EquateEmpty(),
}

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func descriptor(id, price string) domain.ProductDescriptor {
	return domain.ProductDescriptor{ID: id, Title: "item " + id, UnitPrice: dec(price), ImageRef: id + ".png"}
}

func randomDescriptor(ids []string) domain.ProductDescriptor {
	d := domain.ProductDescriptor{
		ID:        ids[gofakeit.IntRange(0, len(ids)-1)],
		Title:     gofakeit.ProductName(),
		UnitPrice: decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		ImageRef:  gofakeit.URL(),
	}
	if gofakeit.Bool() {
		d.DiscountPercent = intPtr(gofakeit.IntRange(0, 100))
	}
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(nil)
	s := e.Snapshot()

	assert.Empty(t, s.Items)
	assert.Nil(t, s.DeliveryAddress)
	assertDecimal(t, "5.99", s.DeliveryFee)
	assertDecimal(t, "0", e.Subtotal())
	assertDecimal(t, "5.99", e.Total())
}

func TestNewEngineCopiesInitialState(t *testing.T) {
	initial := domain.CartState{
		Items:       []domain.LineItem{domain.NewLineItem(descriptor("a", "1"), 2)},
		DeliveryFee: dec("3"),
	}
	e := NewEngine(&initial)
	initial.Items[0].Quantity = 99

	assert.Equal(t, 2, e.Snapshot().Items[0].Quantity)
}

func TestAddItem(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(descriptor("a", "10"))
	e.AddItem(descriptor("b", "20"))
	e.AddItem(descriptor("a", "10"))

	items := e.Snapshot().Items
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestAddItemRepeatKeepsFirstSeenFields(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(domain.ProductDescriptor{ID: "a", Title: "first", UnitPrice: dec("10")})
	e.AddItem(domain.ProductDescriptor{ID: "a", Title: "second", UnitPrice: dec("99"), DiscountPercent: intPtr(50)})

	item := e.Snapshot().Items[0]
	assert.Equal(t, "first", item.Title)
	assertDecimal(t, "10", item.UnitPrice)
	assert.Nil(t, item.DiscountPercent)
	assert.Equal(t, 2, item.Quantity)
}

func TestAddItemClampsDiscount(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(domain.ProductDescriptor{ID: "hi", UnitPrice: dec("10"), DiscountPercent: intPtr(150)})
	e.AddItem(domain.ProductDescriptor{ID: "lo", UnitPrice: dec("10"), DiscountPercent: intPtr(-5)})

	items := e.Snapshot().Items
	assert.Equal(t, 100, *items[0].DiscountPercent)
	assert.Equal(t, 0, *items[1].DiscountPercent)
	assertDecimal(t, "10", e.Subtotal())
}

func TestAddItemDoesNotAliasDescriptor(t *testing.T) {
	d := domain.ProductDescriptor{ID: "a", UnitPrice: dec("10"), DiscountPercent: intPtr(10)}
	e := NewEngine(nil)
	e.AddItem(d)
	*d.DiscountPercent = 90

	assert.Equal(t, 10, *e.Snapshot().Items[0].DiscountPercent)
}

func TestAddItemUniquenessProperty(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	for range 50 {
		e := NewEngine(nil)
		want := map[string]int{}
		for range gofakeit.IntRange(1, 40) {
			d := randomDescriptor(ids)
			e.AddItem(d)
			want[d.ID]++
		}

		got := map[string]int{}
		for _, it := range e.Snapshot().Items {
			_, dup := got[it.ID]
			require.False(t, dup, "duplicate id %s", it.ID)
			got[it.ID] = it.Quantity
		}
		assert.Equal(t, want, got)
	}
}

func TestRemoveItem(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(descriptor("a", "1"))
	e.AddItem(descriptor("b", "2"))
	e.AddItem(descriptor("c", "3"))

	e.RemoveItem("b")

	items := e.Snapshot().Items
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "c", items[1].ID)
}

func TestRemoveItemUnknownIsNoop(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(descriptor("a", "1"))
	e.SetDeliveryAddress(domain.DeliveryAddress{Name: "x"})
	before := e.Snapshot()

	e.RemoveItem("missing")

	assert.Empty(t, cmp.Diff(before, e.Snapshot(), stateOpts))
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		quantity int
		want     map[string]int
	}{
		{name: "sets exact value", id: "a", quantity: 7, want: map[string]int{"a": 7, "b": 1}},
		{name: "zero removes", id: "a", quantity: 0, want: map[string]int{"b": 1}},
		{name: "negative removes", id: "b", quantity: -3, want: map[string]int{"a": 2}},
		{name: "unknown id is noop", id: "z", quantity: 4, want: map[string]int{"a": 2, "b": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(nil)
			e.AddItem(descriptor("a", "1"))
			e.AddItem(descriptor("a", "1"))
			e.AddItem(descriptor("b", "1"))

			e.UpdateQuantity(tt.id, tt.quantity)

			got := map[string]int{}
			for _, it := range e.Snapshot().Items {
				got[it.ID] = it.Quantity
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecrement(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(descriptor("a", "1"))
	e.AddItem(descriptor("a", "1"))

	e.Decrement("a")
	require.Len(t, e.Snapshot().Items, 1)
	assert.Equal(t, 1, e.Snapshot().Items[0].Quantity)

	e.Decrement("a")
	assert.Empty(t, e.Snapshot().Items)

	e.Decrement("a")
	assert.Empty(t, e.Snapshot().Items)
}

func TestSubtotalAndDiscountTotal(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(domain.ProductDescriptor{ID: "a", UnitPrice: dec("100"), DiscountPercent: intPtr(25)})
	e.UpdateQuantity("a", 2)

	assertDecimal(t, "150", e.Subtotal())
	assertDecimal(t, "50", e.DiscountTotal())
	assertDecimal(t, "155.99", e.Total())

	e.AddItem(descriptor("b", "19.99"))
	assertDecimal(t, "169.99", e.Subtotal())
	assertDecimal(t, "50", e.DiscountTotal())
	assert.Equal(t, 3, e.ItemCount())
}

func TestZeroDiscountMeansFullPrice(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(domain.ProductDescriptor{ID: "a", UnitPrice: dec("12.50"), DiscountPercent: intPtr(0)})

	assertDecimal(t, "12.5", e.Subtotal())
	assertDecimal(t, "0", e.DiscountTotal())
}

func TestTotalCompositionProperty(t *testing.T) {
	ids := []string{"a", "b", "c"}
	e := NewEngine(nil)
	for range 200 {
		switch gofakeit.IntRange(0, 6) {
		case 0, 1:
			e.AddItem(randomDescriptor(ids))
		case 2:
			e.RemoveItem(ids[gofakeit.IntRange(0, len(ids)-1)])
		case 3:
			e.UpdateQuantity(ids[gofakeit.IntRange(0, len(ids)-1)], gofakeit.IntRange(-2, 10))
		case 4:
			e.Decrement(ids[gofakeit.IntRange(0, len(ids)-1)])
		case 5:
			require.NoError(t, e.SetDeliveryFee(decimal.NewFromFloat(gofakeit.Price(0, 20)).Round(2)))
		case 6:
			e.ClearCart()
		}

		s := e.Snapshot()
		assert.True(t, e.Total().Equal(e.Subtotal().Add(s.DeliveryFee)))
		for _, it := range s.Items {
			assert.GreaterOrEqual(t, it.Quantity, 1)
		}
	}
}

func TestClearCartKeepsAddressAndFee(t *testing.T) {
	addr := domain.DeliveryAddress{
		Name: "Jane Doe", Street: "1 Main St", City: "Springfield",
		Region: "IL", PostalCode: "62701", Country: "US", Phone: "555",
	}
	e := NewEngine(nil)
	e.AddItem(descriptor("a", "1"))
	e.SetDeliveryAddress(addr)
	require.NoError(t, e.SetDeliveryFee(dec("9.5")))

	e.ClearCart()

	s := e.Snapshot()
	assert.Empty(t, s.Items)
	require.NotNil(t, s.DeliveryAddress)
	assert.Equal(t, addr, *s.DeliveryAddress)
	assertDecimal(t, "9.5", s.DeliveryFee)
}

func TestSetDeliveryAddressReplaces(t *testing.T) {
	e := NewEngine(nil)
	e.SetDeliveryAddress(domain.DeliveryAddress{Name: "a", City: "x"})
	e.SetDeliveryAddress(domain.DeliveryAddress{Name: "b"})

	assert.Equal(t, domain.DeliveryAddress{Name: "b"}, *e.Snapshot().DeliveryAddress)
}

func TestSetDeliveryFeeRejectsNegative(t *testing.T) {
	e := NewEngine(nil)
	calls := 0
	e.Subscribe(func(domain.CartState) { calls++ })

	err := e.SetDeliveryFee(dec("-1"))
	require.ErrorIs(t, err, domain.ErrNegativeFee)
	assertDecimal(t, "5.99", e.Snapshot().DeliveryFee)
	assert.Zero(t, calls)

	require.NoError(t, e.SetDeliveryFee(decimal.Zero))
	assertDecimal(t, "0", e.Snapshot().DeliveryFee)
	assert.Equal(t, 1, calls)
}

func TestSubscribeNotifiesEveryMutation(t *testing.T) {
	e := NewEngine(nil)
	var got []domain.CartState
	unsubscribe := e.Subscribe(func(s domain.CartState) { got = append(got, s) })

	e.AddItem(descriptor("a", "1"))
	e.UpdateQuantity("a", 3)
	e.RemoveItem("missing")
	e.Decrement("a")
	e.SetDeliveryAddress(domain.DeliveryAddress{Name: "n"})
	e.ClearCart()
	require.Len(t, got, 6)
	assert.Equal(t, 3, got[1].Items[0].Quantity)
	assert.Equal(t, 2, got[3].Items[0].Quantity)

	// snapshots handed out are copies
	got[1].Items[0].Quantity = 100
	assert.Equal(t, 3, got[2].Items[0].Quantity)

	unsubscribe()
	e.AddItem(descriptor("b", "1"))
	assert.Len(t, got, 6)
}
