package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
)

const (
	msgAlreadyInProgress  = "Payment is already in progress"
	msgPreparing          = "Preparing payment..."
	msgOpeningGateway     = "Opening payment gateway..."
	msgCancelled          = "Payment cancelled"
	msgVerifying          = "Verifying payment..."
	msgSucceeded          = "Payment successful!"
	msgVerificationFailed = "Payment verification failed. Please contact support."
)

// Backend is the part of the merchant API the orchestrator talks to.
type Backend interface {
	CreatePaymentOrder(ctx context.Context, order domain.PaymentOrder) (string, error)
	VerifyPayment(ctx context.Context, resp domain.GatewayResponse) (bool, error)
}

type Navigator interface {
	Navigate(dest string)
}

type Settings struct {
	KeyID         string
	Currency      string
	MerchantName  string
	Description   string
	ThemeColor    string
	RedirectTo    string
	RedirectDelay time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Currency:      "INR",
		MerchantName:  "ShopEdge",
		Description:   "Purchase from ShopEdge",
		ThemeColor:    "#6366f1",
		RedirectTo:    "/customerhome",
		RedirectDelay: 2 * time.Second,
	}
}

type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithNavigator(n Navigator) Option {
	return func(o *Orchestrator) { o.navigator = n }
}

func WithPublisher(p events.Publisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

func WithSettings(s Settings) Option {
	return func(o *Orchestrator) { o.settings = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// Orchestrator drives one user's checkout: create the gateway order, hand over to
// the payment widget, verify the result. Only one attempt is in flight at a time.
type Orchestrator struct {
	backend   Backend
	gateway   Gateway
	notifier  Notifier
	navigator Navigator
	publisher events.Publisher
	identity  string
	settings  Settings
	logger    *zap.Logger

	newAttemptID func() string
	afterFunc    func(d time.Duration, f func())

	mu      sync.Mutex
	status  domain.CheckoutStatus
	session *domain.PaymentSession
}

func NewOrchestrator(backend Backend, gateway Gateway, identity string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:      backend,
		gateway:      gateway,
		notifier:     &NoticeLog{},
		navigator:    &RedirectRecorder{},
		publisher:    events.Nop,
		identity:     identity,
		settings:     DefaultSettings(),
		logger:       zap.NewNop(),
		newAttemptID: uuid.NewString,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		status: domain.CheckoutStatusIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("username", identity))
	return o
}

func (o *Orchestrator) Identity() string {
	return o.identity
}

// rebind swaps the backend used by the next backend call. The registry calls it with
// the credentials of the latest verified request.
func (o *Orchestrator) rebind(backend Backend) {
	if backend == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.backend = backend
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Session returns a copy of the attempt in flight.
func (o *Orchestrator) Session() (domain.PaymentSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return domain.PaymentSession{}, false
	}
	s := *o.session
	s.CartItems = append([]domain.PaymentCartItem(nil), o.session.CartItems...)
	return s, true
}

// ProcessPayment starts a checkout attempt. It returns once the payment widget is
// open; the outcome arrives later through the widget callbacks.
func (o *Orchestrator) ProcessPayment(ctx context.Context, order domain.PaymentOrder, contact domain.Contact) error {
	o.mu.Lock()
	switch o.status {
	case domain.CheckoutStatusIdle:
	case domain.CheckoutStatusCompleted:
		o.mu.Unlock()
		return ErrCheckoutCompleted
	default:
		o.mu.Unlock()
		o.notify(NoticeError, msgAlreadyInProgress)
		return ErrPaymentInProgress
	}

	if err := Validate(order); err != nil {
		o.mu.Unlock()
		o.notify(NoticeError, "Payment failed: "+err.Error())
		return err
	}

	backend := o.backend
	session := &domain.PaymentSession{
		AttemptID:   o.newAttemptID(),
		TotalAmount: order.TotalAmount,
		CartItems:   append([]domain.PaymentCartItem(nil), order.CartItems...),
	}
	o.session = session
	o.transition(domain.CheckoutStatusCreatingOrder)
	o.mu.Unlock()

	attemptID := session.AttemptID
	log := o.logger.With(zap.String("attempt_id", attemptID))
	o.notify(NoticeLoading, msgPreparing)

	gatewayOrderID, err := backend.CreatePaymentOrder(ctx, order)
	if err != nil {
		log.Error("failed to create payment order", zap.Error(err))
		o.abort(ctx, attemptID, err)
		return err
	}

	o.mu.Lock()
	session.GatewayOrderID = gatewayOrderID
	o.transition(domain.CheckoutStatusAwaitingGateway)
	o.mu.Unlock()

	o.notify(NoticeLoading, msgOpeningGateway)
	o.publish(ctx, events.CheckoutEvent{
		Type:           events.CheckoutCreated,
		AttemptID:      attemptID,
		GatewayOrderID: gatewayOrderID,
		TotalAmount:    order.TotalAmount,
	})

	cfg := WidgetConfig{
		Key:          o.settings.KeyID,
		Amount:       domain.ToMinorUnits(order.TotalAmount),
		Currency:     o.settings.Currency,
		MerchantName: o.settings.MerchantName,
		Description:  o.settings.Description,
		OrderID:      gatewayOrderID,
		Prefill: Prefill{
			Name:    contact.Name,
			Email:   contact.Email,
			Contact: contact.Contact,
		},
		ThemeColor: o.settings.ThemeColor,
	}
	cb := Callbacks{
		OnSuccess: func(ctx context.Context, resp domain.GatewayResponse) error {
			return o.handleSuccess(ctx, attemptID, resp)
		},
		OnDismiss: func() error {
			return o.handleDismiss(attemptID)
		},
	}
	if err := o.gateway.Open(ctx, cfg, cb); err != nil {
		log.Error("failed to open payment widget", zap.Error(err))
		o.abort(ctx, attemptID, err)
		return fmt.Errorf("failed to open payment widget: %w", err)
	}

	log.Info("payment widget opened", zap.String("gateway_order_id", gatewayOrderID))
	return nil
}

// abort returns a failed attempt to Idle before the widget ever reported back.
func (o *Orchestrator) abort(ctx context.Context, attemptID string, cause error) {
	o.mu.Lock()
	if o.session == nil || o.session.AttemptID != attemptID {
		o.mu.Unlock()
		return
	}
	total := o.session.TotalAmount
	gatewayOrderID := o.session.GatewayOrderID
	o.session = nil
	o.transition(domain.CheckoutStatusIdle)
	o.mu.Unlock()

	o.notify(NoticeError, "Payment failed: "+cause.Error())
	o.publish(ctx, events.CheckoutEvent{
		Type:           events.CheckoutCreateFailed,
		AttemptID:      attemptID,
		GatewayOrderID: gatewayOrderID,
		TotalAmount:    total,
		Reason:         cause.Error(),
	})
}

func (o *Orchestrator) handleSuccess(ctx context.Context, attemptID string, resp domain.GatewayResponse) error {
	o.mu.Lock()
	if o.status != domain.CheckoutStatusAwaitingGateway || o.session == nil || o.session.AttemptID != attemptID {
		o.mu.Unlock()
		return ErrNotAwaitingGateway
	}
	session := o.session
	if resp.GatewayOrderID != "" && resp.GatewayOrderID != session.GatewayOrderID {
		o.mu.Unlock()
		o.logger.Warn("gateway response for another order",
			zap.String("attempt_id", attemptID),
			zap.String("expected_order_id", session.GatewayOrderID),
			zap.String("reported_order_id", resp.GatewayOrderID))
		return ErrGatewayOrderMismatch
	}
	// only the order minted for this attempt is ever verified
	resp.GatewayOrderID = session.GatewayOrderID
	session.GatewayPaymentID = resp.GatewayPaymentID
	session.GatewaySignature = resp.GatewaySignature
	total := session.TotalAmount
	backend := o.backend
	o.transition(domain.CheckoutStatusVerifyingPayment)
	o.mu.Unlock()

	log := o.logger.With(zap.String("attempt_id", attemptID), zap.String("gateway_order_id", resp.GatewayOrderID))
	o.notify(NoticeLoading, msgVerifying)

	verified, err := backend.VerifyPayment(ctx, resp)

	event := events.CheckoutEvent{
		AttemptID:        attemptID,
		GatewayOrderID:   resp.GatewayOrderID,
		GatewayPaymentID: resp.GatewayPaymentID,
		TotalAmount:      total,
	}

	o.mu.Lock()
	o.session = nil
	if err != nil || !verified {
		o.transition(domain.CheckoutStatusIdle)
		o.mu.Unlock()

		event.Type = events.CheckoutVerificationFailed
		if err != nil {
			log.Error("payment verification request failed", zap.Error(err))
			event.Reason = err.Error()
		} else {
			log.Warn("payment was not verified")
			event.Reason = "not verified"
		}
		o.notify(NoticeError, msgVerificationFailed)
		o.publish(ctx, event)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
		}
		return ErrVerificationFailed
	}
	o.transition(domain.CheckoutStatusCompleted)
	o.mu.Unlock()

	log.Info("payment verified")
	o.notify(NoticeSuccess, msgSucceeded)
	event.Type = events.CheckoutVerified
	o.publish(ctx, event)

	dest := o.settings.RedirectTo
	o.afterFunc(o.settings.RedirectDelay, func() {
		o.navigator.Navigate(dest)
	})
	return nil
}

func (o *Orchestrator) handleDismiss(attemptID string) error {
	o.mu.Lock()
	if o.status != domain.CheckoutStatusAwaitingGateway || o.session == nil || o.session.AttemptID != attemptID {
		o.mu.Unlock()
		return ErrNotAwaitingGateway
	}
	event := events.CheckoutEvent{
		Type:           events.CheckoutCancelled,
		AttemptID:      attemptID,
		GatewayOrderID: o.session.GatewayOrderID,
		TotalAmount:    o.session.TotalAmount,
		Reason:         "dismissed",
	}
	o.session = nil
	o.transition(domain.CheckoutStatusIdle)
	o.mu.Unlock()

	o.logger.Info("payment widget dismissed", zap.String("attempt_id", attemptID))
	o.notify(NoticeError, msgCancelled)
	o.publish(context.Background(), event)
	return nil
}

// transition must be called with o.mu held.
func (o *Orchestrator) transition(to domain.CheckoutStatus) {
	if !domain.CanTransitionTo(o.status, to) {
		o.logger.Error("invalid checkout transition",
			zap.Stringer("from", o.status),
			zap.Stringer("to", to))
	}
	o.status = to
}

func (o *Orchestrator) notify(kind NoticeKind, msg string) {
	o.notifier.Notify(Notice{Kind: kind, Message: msg})
}

// publish never fails the checkout; the event stream is informational.
func (o *Orchestrator) publish(ctx context.Context, event events.CheckoutEvent) {
	event.Username = o.identity
	event.OccurredAt = time.Now().UTC()
	if err := o.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		o.logger.Warn("checkout event dropped",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
