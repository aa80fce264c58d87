package backend

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type orderProductDTO struct {
	OrderID      string          `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	ImageURL     *string         `json:"image_url"`
}

type ordersResponseDTO struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Orders   struct {
		Products []orderProductDTO `json:"products"`
	} `json:"orders"`
}

type orderStatsDTO struct {
	TotalOrders   int             `json:"total_orders"`
	TotalSpending decimal.Decimal `json:"total_spending"`
}

func (c *Client) ListOrders(ctx context.Context) (*domain.OrderHistory, error) {
	var resp ordersResponseDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", nil, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.OrderRecord, 0, len(resp.Orders.Products))
	for _, p := range resp.Orders.Products {
		records = append(records, domain.OrderRecord{
			OrderID:     p.OrderID,
			ProductID:   p.ProductID,
			Name:        p.Name,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.PricePerUnit,
			LineTotal:   p.TotalPrice,
			ImageURL:    p.ImageURL,
		})
	}
	return &domain.OrderHistory{
		Owner:   resp.Username,
		Role:    resp.Role,
		Records: records,
	}, nil
}

func (c *Client) OrderStats(ctx context.Context) (domain.OrderStats, error) {
	var resp orderStatsDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/stats", nil, nil, &resp); err != nil {
		return domain.OrderStats{}, err
	}
	return domain.OrderStats{
		TotalOrders:   resp.TotalOrders,
		TotalSpending: resp.TotalSpending,
	}, nil
}
