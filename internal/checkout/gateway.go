package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// WidgetConfig is everything the third-party payment widget needs to open.
type WidgetConfig struct {
	Key          string  `json:"key"`
	Amount       int64   `json:"amount"` // minor units
	Currency     string  `json:"currency"`
	MerchantName string  `json:"name"`
	Description  string  `json:"description"`
	OrderID      string  `json:"order_id"`
	Prefill      Prefill `json:"prefill"`
	ThemeColor   string  `json:"theme_color"`
}

type Callbacks struct {
	OnSuccess func(ctx context.Context, resp domain.GatewayResponse) error
	OnDismiss func() error
}

// Gateway opens the payment widget. The widget later calls exactly one of the callbacks.
type Gateway interface {
	Open(ctx context.Context, cfg WidgetConfig, cb Callbacks) error
}

// RemoteWidget is a Gateway for a widget that runs in the user's browser. Open stores
// the configuration for the browser to fetch; Complete and Dismiss relay what the
// browser reports. Each opening accepts a single outcome.
type RemoteWidget struct {
	mu        sync.Mutex
	config    *WidgetConfig
	callbacks *Callbacks
}

func NewRemoteWidget() *RemoteWidget {
	return &RemoteWidget{}
}

func (w *RemoteWidget) Open(_ context.Context, cfg WidgetConfig, cb Callbacks) error {
	if cfg.Key == "" {
		return ErrGatewayNotConfigured
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config = &cfg
	w.callbacks = &cb
	return nil
}

// Config returns the configuration of the open widget.
func (w *RemoteWidget) Config() (WidgetConfig, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.config == nil {
		return WidgetConfig{}, false
	}
	return *w.config, true
}

func (w *RemoteWidget) take() (*Callbacks, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.callbacks == nil {
		return nil, ErrWidgetNotOpen
	}
	cb := w.callbacks
	w.callbacks = nil
	w.config = nil
	return cb, nil
}

// Complete relays a successful payment. A response naming another order is rejected
// and leaves the widget open.
func (w *RemoteWidget) Complete(ctx context.Context, resp domain.GatewayResponse) error {
	w.mu.Lock()
	if w.config != nil && resp.GatewayOrderID != "" && resp.GatewayOrderID != w.config.OrderID {
		w.mu.Unlock()
		return ErrGatewayOrderMismatch
	}
	w.mu.Unlock()

	cb, err := w.take()
	if err != nil {
		return err
	}
	return cb.OnSuccess(ctx, resp)
}

func (w *RemoteWidget) Dismiss() error {
	cb, err := w.take()
	if err != nil {
		return err
	}
	return cb.OnDismiss()
}
