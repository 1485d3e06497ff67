package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// ErrEmptyCart is returned when checking out a cart without items.
var ErrEmptyCart = errors.New("cart is empty")

// Service owns one Engine per session and serialises access to each.
type Service struct {
	store      cartrepo.Store
	persister  *Persister
	products   productRepo
	logger     *zap.Logger
	defaultFee decimal.Decimal
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type session struct {
	mu       sync.Mutex
	engine   *Engine
	detach   func()
	lastUsed time.Time
	gone     bool
}

func (sess *session) retire() {
	if sess.detach != nil {
		sess.detach()
	}
	sess.gone = true
	sess.engine = nil
}

// View is a cart state together with its derived totals.
type View struct {
	State         domain.CartState
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
	ItemCount     int
}

type Option func(*Service)

// WithDefaultDeliveryFee sets the fee of carts that have no stored state.
func WithDefaultDeliveryFee(fee decimal.Decimal) Option {
	return func(s *Service) { s.defaultFee = fee }
}

func New(store cartrepo.Store, persister *Persister, products productRepo, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:      store,
		persister:  persister,
		products:   products,
		logger:     logger,
		defaultFee: domain.DefaultDeliveryFee,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Do runs fn against the session's engine. Calls for the same session never
// overlap; the engine is restored from the store on first use.
func (s *Service) Do(ctx context.Context, sessionID string, fn func(e *Engine) error) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Invalid("sessionID is empty")
	}

	sess := s.acquire(sessionID)
	defer sess.mu.Unlock()

	if sess.engine == nil {
		e, err := s.restore(ctx, sessionID)
		if err != nil {
			return err
		}
		sess.engine = e
		sess.detach = s.persister.Attach(cartrepo.Key(sessionID), e)
	}
	sess.lastUsed = s.now()
	return fn(sess.engine)
}

func (s *Service) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// acquire returns the live, locked session for id.
func (s *Service) acquire(id string) *session {
	for {
		sess := s.session(id)
		sess.mu.Lock()
		if !sess.gone {
			return sess
		}
		sess.mu.Unlock()
	}
}

func (s *Service) restore(ctx context.Context, sessionID string) (*Engine, error) {
	// An evicted engine may still have a queued write for this key.
	if err := s.persister.Flush(ctx); err != nil {
		return nil, fmt.Errorf("persister.Flush: %w", err)
	}

	key := cartrepo.Key(sessionID)
	payload, err := s.store.Load(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.fresh(), nil
	case err != nil:
		return nil, fmt.Errorf("store.Load: %w", err)
	}

	state, err := cartrepo.Decode(payload)
	if err != nil {
		s.logger.Warn("discarding stored cart", zap.String("key", key), zap.Error(err))
		return s.fresh(), nil
	}
	s.logger.Debug("cart restored", zap.String("key", key), zap.Int("items", len(state.Items)))
	return NewEngine(&state), nil
}

func (s *Service) fresh() *Engine {
	state := domain.NewCartState()
	state.DeliveryFee = s.defaultFee
	return NewEngine(&state)
}

func viewOf(e *Engine) View {
	return View{
		State:         e.Snapshot(),
		Subtotal:      e.Subtotal(),
		DiscountTotal: e.DiscountTotal(),
		Total:         e.Total(),
		ItemCount:     e.ItemCount(),
	}
}

// withView applies fn and returns the resulting view.
func (s *Service) withView(ctx context.Context, sessionID string, fn func(e *Engine) error) (View, error) {
	var v View
	err := s.Do(ctx, sessionID, func(e *Engine) error {
		if err := fn(e); err != nil {
			return err
		}
		v = viewOf(e)
		return nil
	})
	return v, err
}

func (s *Service) Get(ctx context.Context, sessionID string) (View, error) {
	return s.withView(ctx, sessionID, func(*Engine) error { return nil })
}

// AddProduct looks the product up in the catalog and adds it to the cart.
func (s *Service) AddProduct(ctx context.Context, sessionID, productID string) (View, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return View{}, domain.Invalid("productId required")
	}
	if s.products == nil {
		return View{}, errors.New("product repository unavailable")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return View{}, err
	}
	return s.AddDescriptor(ctx, sessionID, p.Descriptor())
}

func (s *Service) AddDescriptor(ctx context.Context, sessionID string, d domain.ProductDescriptor) (View, error) {
	if strings.TrimSpace(d.ID) == "" {
		return View{}, domain.Invalid("item id required")
	}
	if d.UnitPrice.IsNegative() {
		return View{}, domain.Invalid("unit price must not be negative")
	}
	return s.withView(ctx, sessionID, func(e *Engine) error {
		e.AddItem(d)
		return nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID string) (View, error) {
	return s.withView(ctx, sessionID, func(e *Engine) error {
		e.RemoveItem(itemID)
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (View, error) {
	return s.withView(ctx, sessionID, func(e *Engine) error {
		e.UpdateQuantity(itemID, quantity)
		return nil
	})
}

func (s *Service) Decrement(ctx context.Context, sessionID, itemID string) (View, error) {
	return s.withView(ctx, sessionID, func(e *Engine) error {
		e.Decrement(itemID)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) (View, error) {
	return s.withView(ctx, sessionID, func(e *Engine) error {
		e.ClearCart()
		return nil
	})
}

func (s *Service) SetDeliveryAddress(ctx context.Context, sessionID string, addr domain.DeliveryAddress) (View, error) {
	return s.withView(ctx, sessionID, func(e *Engine) error {
		e.SetDeliveryAddress(addr)
		return nil
	})
}

func (s *Service) SetDeliveryFee(ctx context.Context, sessionID string, fee decimal.Decimal) (View, error) {
	return s.withView(ctx, sessionID, func(e *Engine) error {
		return e.SetDeliveryFee(fee)
	})
}

// Checkout returns the cart as it was and clears its items.
func (s *Service) Checkout(ctx context.Context, sessionID string) (View, error) {
	var v View
	err := s.Do(ctx, sessionID, func(e *Engine) error {
		if e.ItemCount() == 0 {
			return ErrEmptyCart
		}
		v = viewOf(e)
		e.ClearCart()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.logger.Info("cart checked out",
		zap.String("session", sessionID),
		zap.Int("items", v.ItemCount),
		zap.String("total", v.Total.StringFixed(2)),
	)
	return v, nil
}

// Forget ends a session: the engine is dropped and its stored state deleted.
func (s *Service) Forget(ctx context.Context, sessionID string) error {
	key := cartrepo.Key(sessionID)

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok {
		sess.mu.Lock()
		sess.retire()
		sess.mu.Unlock()
	}
	s.persister.Discard(key)
	if err := s.persister.Flush(ctx); err != nil {
		return fmt.Errorf("persister.Flush: %w", err)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}
	return nil
}

// EvictIdle drops in-memory engines unused for longer than idle. Their
// persisted state is kept and restored on next use.
func (s *Service) EvictIdle(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) {
			sess.retire()
			delete(s.sessions, id)
			evicted++
		}
		sess.mu.Unlock()
	}
	if evicted > 0 {
		s.logger.Debug("evicted idle carts", zap.Int("count", evicted))
	}
	return evicted
}
