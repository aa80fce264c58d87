package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
)

// DefaultIdleTTL is how long a settled checkout stays readable before Sweep drops it.
const DefaultIdleTTL = 15 * time.Minute

// Checkout bundles one user's orchestrator with the collaborators the HTTP surface reads.
type Checkout struct {
	Orchestrator *Orchestrator
	Widget       *RemoteWidget
	Notices      *NoticeLog
	Redirect     *RedirectRecorder

	lastUsed time.Time
}

type RegistryOption func(*Registry)

func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTTL = d }
}

// Registry keeps one checkout per verified identity.
type Registry struct {
	settings  Settings
	publisher events.Publisher
	logger    *zap.Logger
	idleTTL   time.Duration
	now       func() time.Time

	mu        sync.Mutex
	checkouts map[string]*Checkout
}

func NewRegistry(settings Settings, publisher events.Publisher, logger *zap.Logger, opts ...RegistryOption) *Registry {
	if publisher == nil {
		publisher = events.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		settings:  settings,
		publisher: publisher,
		logger:    logger,
		idleTTL:   DefaultIdleTTL,
		now:       time.Now,
		checkouts: make(map[string]*Checkout),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin returns the identity's checkout, replacing one that already completed.
// An existing checkout is rebound to backend so later calls use the caller's current credentials.
func (r *Registry) Begin(identity string, backend Backend) *Checkout {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.checkouts[identity]; ok && !c.Orchestrator.Status().IsTerminal() {
		c.Orchestrator.rebind(backend)
		c.lastUsed = r.now()
		return c
	}

	c := &Checkout{
		Widget:   NewRemoteWidget(),
		Notices:  &NoticeLog{},
		Redirect: &RedirectRecorder{},
		lastUsed: r.now(),
	}
	c.Orchestrator = NewOrchestrator(backend, c.Widget, identity,
		WithNotifier(c.Notices),
		WithNavigator(c.Redirect),
		WithPublisher(r.publisher),
		WithSettings(r.settings),
		WithLogger(r.logger),
	)
	r.checkouts[identity] = c
	return c
}

// Resume returns the identity's checkout rebound to backend.
func (r *Registry) Resume(identity string, backend Backend) (*Checkout, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.checkouts[identity]
	if !ok {
		return nil, false
	}
	c.Orchestrator.rebind(backend)
	c.lastUsed = r.now()
	return c, true
}

func (r *Registry) Lookup(identity string) (*Checkout, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.checkouts[identity]
	if ok {
		c.lastUsed = r.now()
	}
	return c, ok
}

func (r *Registry) Settings() Settings {
	return r.settings
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.checkouts)
}

// Sweep drops idle and completed checkouts untouched for longer than the idle TTL.
// Attempts in flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for identity, c := range r.checkouts {
		status := c.Orchestrator.Status()
		if status != domain.CheckoutStatusIdle && !status.IsTerminal() {
			continue
		}
		if c.lastUsed.After(cutoff) {
			continue
		}
		delete(r.checkouts, identity)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle checkouts", zap.Int("count", n))
			}
		}
	}
}
