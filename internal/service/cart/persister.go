package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

const defaultWriteTimeout = 5 * time.Second

// Persister writes engine snapshots to a Store on a background goroutine.
// Pending writes are coalesced per key so only the latest state is saved.
// Write failures are logged and counted, never returned to the mutating caller.
type Persister struct {
	store        cartrepo.Store
	logger       *zap.Logger
	writeTimeout time.Duration

	mu      sync.Mutex
	pending map[string]domain.CartState
	order   []string
	closed  bool

	wake     chan struct{}
	flushReq chan chan struct{}
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	failures atomic.Int64
}

func NewPersister(store cartrepo.Store, logger *zap.Logger, writeTimeout time.Duration) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	p := &Persister{
		store:        store,
		logger:       logger,
		writeTimeout: writeTimeout,
		pending:      make(map[string]domain.CartState),
		wake:         make(chan struct{}, 1),
		flushReq:     make(chan chan struct{}),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Attach subscribes to e and queues a write under key on every change.
// The returned func detaches.
func (p *Persister) Attach(key string, e *Engine) func() {
	return e.Subscribe(func(state domain.CartState) {
		p.enqueue(key, state)
	})
}

func (p *Persister) enqueue(key string, state domain.CartState) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("persister closed, dropping cart write", zap.String("key", key))
		return
	}
	if _, ok := p.pending[key]; !ok {
		p.order = append(p.order, key)
	}
	p.pending[key] = state
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Discard drops a queued write for key, if any.
func (p *Persister) Discard(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[key]; !ok {
		return
	}
	delete(p.pending, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Flush blocks until every write queued before the call has been attempted.
func (p *Persister) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case p.flushReq <- reply:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the worker.
func (p *Persister) Close(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.quit)
	})
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failures reports how many writes have failed since start.
func (p *Persister) Failures() int64 {
	return p.failures.Load()
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.drain()
		case reply := <-p.flushReq:
			p.drain()
			close(reply)
		case <-p.quit:
			p.drain()
			return
		}
	}
}

func (p *Persister) drain() {
	for {
		p.mu.Lock()
		if len(p.order) == 0 {
			p.mu.Unlock()
			return
		}
		key := p.order[0]
		p.order = p.order[1:]
		state := p.pending[key]
		delete(p.pending, key)
		p.mu.Unlock()

		p.write(key, state)
	}
}

func (p *Persister) write(key string, state domain.CartState) {
	payload, err := cartrepo.Encode(state)
	if err != nil {
		p.failures.Add(1)
		p.logger.Error("encode cart state", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	if err := p.store.Save(ctx, key, payload); err != nil {
		p.failures.Add(1)
		p.logger.Warn("persist cart state", zap.String("key", key), zap.Error(err))
		return
	}
	p.logger.Debug("cart state persisted", zap.String("key", key), zap.Int("items", len(state.Items)))
}
