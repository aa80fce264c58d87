package orders

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

const guestOwner = "Guest"

var (
	ErrLoginRequired = errors.New("please login to view your orders")
	ErrFetchFailed   = errors.New("failed to fetch orders")
	ErrInvalidFilter = errors.New("invalid order filter")
)

type Source interface {
	ListOrders(ctx context.Context) (*domain.OrderHistory, error)
	OrderStats(ctx context.Context) (domain.OrderStats, error)
}

type ViewState string

const (
	ViewLoading ViewState = "loading"
	ViewError   ViewState = "error"
	ViewEmpty   ViewState = "empty"
	ViewReady   ViewState = "ready"
)

// FilterUpdate changes only the fields that are set.
type FilterUpdate struct {
	SearchTerm *string
	SortBy     *domain.SortBy
	SortOrder  *domain.SortOrder
}

type Aggregator struct {
	source Source
	logger *zap.Logger

	mu      sync.RWMutex
	owner   string
	records []domain.OrderRecord
	stats   domain.OrderStats
	filter  domain.OrderFilter
	loading bool
	err     error
	gen     uint64
}

func NewAggregator(source Source, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		source:  source,
		logger:  logger,
		filter:  domain.DefaultOrderFilter(),
		loading: true,
	}
}

// Fetch reads the order history and the stats together. Either failing leaves the
// aggregator in the error state with no data.
func (a *Aggregator) Fetch(ctx context.Context) error {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.loading = true
	a.err = nil
	a.mu.Unlock()

	var (
		history *domain.OrderHistory
		stats   domain.OrderStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := a.source.ListOrders(gctx)
		if err != nil {
			return err
		}
		history = h
		return nil
	})
	g.Go(func() error {
		s, err := a.source.OrderStats(gctx)
		if err != nil {
			return err
		}
		stats = s
		return nil
	})
	err := g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return nil
	}
	a.loading = false

	if err != nil {
		a.logger.Error("failed to fetch orders", zap.Error(err))
		a.records = nil
		a.stats = domain.OrderStats{}
		a.owner = ""
		if errors.Is(err, backend.ErrUnauthorized) {
			a.err = ErrLoginRequired
		} else {
			a.err = fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		return a.err
	}

	a.owner = history.Owner
	if a.owner == "" {
		a.owner = guestOwner
	}
	a.records = history.Records
	a.stats = stats
	a.err = nil
	return nil
}

func (a *Aggregator) Refresh(ctx context.Context) error {
	return a.Fetch(ctx)
}

func (a *Aggregator) UpdateFilters(u FilterUpdate) error {
	if u.SortBy != nil && !u.SortBy.Valid() {
		return fmt.Errorf("%w: sort by %q", ErrInvalidFilter, *u.SortBy)
	}
	if u.SortOrder != nil && !u.SortOrder.Valid() {
		return fmt.Errorf("%w: sort order %q", ErrInvalidFilter, *u.SortOrder)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if u.SearchTerm != nil {
		a.filter.SearchTerm = *u.SearchTerm
	}
	if u.SortBy != nil {
		a.filter.SortBy = *u.SortBy
	}
	if u.SortOrder != nil {
		a.filter.SortOrder = *u.SortOrder
	}
	return nil
}

func (a *Aggregator) ClearFilters() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filter = domain.DefaultOrderFilter()
}

func (a *Aggregator) Filter() domain.OrderFilter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.filter
}

// Filtered returns the records matching the current filter, in its sort order.
func (a *Aggregator) Filtered() []domain.OrderRecord {
	a.mu.RLock()
	records, filter := a.records, a.filter
	a.mu.RUnlock()
	return Apply(records, filter)
}

// Apply filters and sorts records without touching the input slice. Records that
// compare equal keep their original order.
func Apply(records []domain.OrderRecord, filter domain.OrderFilter) []domain.OrderRecord {
	term := strings.ToLower(filter.SearchTerm)
	out := make([]domain.OrderRecord, 0, len(records))
	for _, r := range records {
		if term == "" ||
			strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Description), term) ||
			strings.Contains(strings.ToLower(r.OrderID), term) {
			out = append(out, r)
		}
	}

	cmp := compareBy(filter.SortBy)
	slices.SortStableFunc(out, func(x, y domain.OrderRecord) int {
		if filter.SortOrder == domain.SortAsc {
			return cmp(x, y)
		}
		return -cmp(x, y)
	})
	return out
}

func compareBy(by domain.SortBy) func(x, y domain.OrderRecord) int {
	switch by {
	case domain.SortByAmount:
		return func(x, y domain.OrderRecord) int { return x.LineTotal.Cmp(y.LineTotal) }
	case domain.SortByName:
		return func(x, y domain.OrderRecord) int { return strings.Compare(x.Name, y.Name) }
	default:
		return func(x, y domain.OrderRecord) int { return strings.Compare(x.OrderID, y.OrderID) }
	}
}

func (a *Aggregator) View() ViewState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	switch {
	case a.loading:
		return ViewLoading
	case a.err != nil:
		return ViewError
	case len(a.records) == 0:
		return ViewEmpty
	default:
		return ViewReady
	}
}

func (a *Aggregator) Owner() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

func (a *Aggregator) Stats() domain.OrderStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

func (a *Aggregator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

func (a *Aggregator) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

func (a *Aggregator) Records() []domain.OrderRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.records)
}

func (a *Aggregator) HasOrders() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records) > 0
}

func (a *Aggregator) HasFilteredResults() bool {
	return len(a.Filtered()) > 0
}
