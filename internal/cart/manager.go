// Package cart keeps one user's view of their server-side cart.
//
// The backend is the only source of truth. Every mutation is followed by a full
// re-read of the cart, so totals shown to the user are always server-computed.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Backend is the subset of the REST client the manager needs.
type Backend interface {
	GetCart(ctx context.Context, username string) (*domain.CartSnapshot, error)
	AddCartItem(ctx context.Context, username string, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, username string, productID int64, quantity int) error
	RemoveCartItem(ctx context.Context, username string, productID int64) error
}

type Manager struct {
	backend  Backend
	identity string
	shipping decimal.Decimal
	logger   *zap.Logger

	// mutations serializes each mutation together with its re-fetch.
	mutations sync.Mutex

	mu      sync.RWMutex
	owner   string
	items   []domain.CartItem
	loading bool
	err     error
	gen     uint64
}

type Option func(*Manager)

func WithShippingCost(cost decimal.Decimal) Option {
	return func(m *Manager) { m.shipping = cost }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(backend Backend, identity string, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		identity: identity,
		shipping: domain.DefaultShippingCost,
		logger:   zap.NewNop(),
		owner:    identity,
		loading:  true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the item list with a fresh read. On failure the cart is emptied and
// the error is kept so stale totals are never shown. A load that finishes after a
// newer one was started leaves the state alone.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.loading = true
	m.err = nil
	m.mu.Unlock()

	cart, err := m.backend.GetCart(ctx, m.identity)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		logger.WithTrace(ctx, m.logger).Debug("discarding superseded cart load",
			zap.String("username", m.identity),
			zap.Uint64("generation", gen))
		return nil
	}
	m.loading = false

	if err != nil {
		m.items = nil
		m.err = fmt.Errorf("failed to load cart: %w", err)
		logger.WithTrace(ctx, m.logger).Warn("cart load failed",
			zap.String("username", m.identity),
			zap.Error(err))
		return m.err
	}

	m.items = append([]domain.CartItem(nil), cart.Items...)
	if cart.Owner != "" {
		m.owner = cart.Owner
	}
	return nil
}

// SetQuantity updates one line and re-reads the cart. Quantity is not validated here.
func (m *Manager) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	return m.mutate(ctx, "update", productID, func(ctx context.Context) error {
		return m.backend.UpdateCartItem(ctx, m.identity, productID, quantity)
	})
}

func (m *Manager) RemoveItem(ctx context.Context, productID int64) error {
	return m.mutate(ctx, "remove", productID, func(ctx context.Context) error {
		return m.backend.RemoveCartItem(ctx, m.identity, productID)
	})
}

func (m *Manager) AddItem(ctx context.Context, productID int64, quantity int) error {
	return m.mutate(ctx, "add", productID, func(ctx context.Context) error {
		return m.backend.AddCartItem(ctx, m.identity, productID, quantity)
	})
}

// mutate runs call and then always re-fetches. The caller sees the re-fetch result;
// a failed mutation is only logged.
func (m *Manager) mutate(ctx context.Context, op string, productID int64, call func(context.Context) error) error {
	m.mutations.Lock()
	defer m.mutations.Unlock()

	if err := call(ctx); err != nil {
		logger.WithTrace(ctx, m.logger).Warn("cart mutation failed",
			zap.String("op", op),
			zap.String("username", m.identity),
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	return m.Load(ctx)
}

func (m *Manager) Identity() string {
	return m.identity
}

// Owner is the username reported by the backend, or the identity before the first load.
func (m *Manager) Owner() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owner
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *Manager) Items() []domain.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.CartItem(nil), m.items...)
}

// Snapshot returns a copy of the current cart. Totals are derived from it on demand.
func (m *Manager) Snapshot() domain.CartSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.CartSnapshot{
		Owner:        m.owner,
		Items:        append([]domain.CartItem(nil), m.items...),
		ShippingCost: m.shipping,
	}
}

func (m *Manager) Subtotal() decimal.Decimal {
	return m.Snapshot().Subtotal()
}

func (m *Manager) TotalItemCount() int {
	return m.Snapshot().TotalItemCount()
}

func (m *Manager) GrandTotal() decimal.Decimal {
	return m.Snapshot().GrandTotal()
}

func (m *Manager) ShippingCost() decimal.Decimal {
	return m.shipping
}
