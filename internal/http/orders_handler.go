package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
)

type OrdersHandler struct {
	backendFor BackendFunc
	timeout    time.Duration
	logger     *zap.Logger
}

func NewOrdersHandler(backendFor BackendFunc, timeout time.Duration, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		backendFor: backendFor,
		timeout:    timeout,
		logger:     logger,
	}
}

type OrderRecordDTO struct {
	OrderID      string          `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	ImageURL     *string         `json:"image_url"`
}

type OrderFiltersDTO struct {
	SearchTerm string `json:"search_term"`
	SortBy     string `json:"sort_by"`
	SortOrder  string `json:"sort_order"`
}

type OrdersResponseDTO struct {
	Username           string           `json:"username"`
	View               string           `json:"view"`
	TotalOrders        int              `json:"total_orders"`
	TotalSpent         decimal.Decimal  `json:"total_spent"`
	Orders             []OrderRecordDTO `json:"orders"`
	HasOrders          bool             `json:"has_orders"`
	HasFilteredResults bool             `json:"has_filtered_results"`
	Filters            OrderFiltersDTO  `json:"filters"`
}

// GET /api/v1/orders?q=&sort_by=&sort_order=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	agg := orders.NewAggregator(h.backendFor(id.Credentials), h.logger)
	if err := agg.UpdateFilters(filterFromQuery(r)); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	if err := agg.Fetch(ctx); err != nil {
		handleError(w, err)
		return
	}

	filtered := agg.Filtered()
	dtos := make([]OrderRecordDTO, 0, len(filtered))
	for _, rec := range filtered {
		dtos = append(dtos, convertOrderRecord(rec))
	}

	stats := agg.Stats()
	filter := agg.Filter()
	respondJSON(w, http.StatusOK, OrdersResponseDTO{
		Username:           agg.Owner(),
		View:               string(agg.View()),
		TotalOrders:        stats.TotalOrders,
		TotalSpent:         stats.TotalSpending,
		Orders:             dtos,
		HasOrders:          agg.HasOrders(),
		HasFilteredResults: len(filtered) > 0,
		Filters: OrderFiltersDTO{
			SearchTerm: filter.SearchTerm,
			SortBy:     string(filter.SortBy),
			SortOrder:  string(filter.SortOrder),
		},
	})
}

func filterFromQuery(r *http.Request) orders.FilterUpdate {
	q := r.URL.Query()
	var u orders.FilterUpdate
	if q.Has("q") {
		term := q.Get("q")
		u.SearchTerm = &term
	}
	if v := q.Get("sort_by"); v != "" {
		by := domain.SortBy(v)
		u.SortBy = &by
	}
	if v := q.Get("sort_order"); v != "" {
		order := domain.SortOrder(v)
		u.SortOrder = &order
	}
	return u
}

func convertOrderRecord(o domain.OrderRecord) OrderRecordDTO {
	return OrderRecordDTO{
		OrderID:      o.OrderID,
		ProductID:    o.ProductID,
		Name:         o.Name,
		Description:  o.Description,
		Quantity:     o.Quantity,
		PricePerUnit: o.UnitPrice,
		TotalPrice:   o.LineTotal,
		ImageURL:     o.ImageURL,
	}
}
