package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type cartProductDTO struct {
	ProductID    int64           `json:"product_id"`
	ImageURL     string          `json:"image_url"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type cartResponseDTO struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Cart     struct {
		OverallTotalPrice decimal.Decimal  `json:"overall_total_price"`
		Products          []cartProductDTO `json:"products"`
	} `json:"cart"`
}

type cartMutationDTO struct {
	Username  string `json:"username"`
	ProductID int64  `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// GetCart reads the cart owned by username. ShippingCost is left zero.
func (c *Client) GetCart(ctx context.Context, username string) (*domain.CartSnapshot, error) {
	var resp cartResponseDTO
	query := url.Values{"username": []string{username}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/cart/items", query, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(resp.Cart.Products))
	for _, p := range resp.Cart.Products {
		items = append(items, domain.CartItem{
			ProductID:   p.ProductID,
			ImageURL:    p.ImageURL,
			Name:        p.Name,
			Description: p.Description,
			UnitPrice:   p.PricePerUnit,
			Quantity:    p.Quantity,
			LineTotal:   p.TotalPrice,
		})
	}
	return &domain.CartSnapshot{
		Owner: resp.Username,
		Items: items,
	}, nil
}

func (c *Client) AddCartItem(ctx context.Context, username string, productID int64, quantity int) error {
	return c.doJSON(ctx, http.MethodPost, "/api/cart/add", nil, cartMutationDTO{
		Username:  username,
		ProductID: productID,
		Quantity:  &quantity,
	}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, username string, productID int64, quantity int) error {
	return c.doJSON(ctx, http.MethodPut, "/api/cart/update", nil, cartMutationDTO{
		Username:  username,
		ProductID: productID,
		Quantity:  &quantity,
	}, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, username string, productID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/cart/delete", nil, cartMutationDTO{
		Username:  username,
		ProductID: productID,
	}, nil)
}
