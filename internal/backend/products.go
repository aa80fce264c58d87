package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type productsResponseDTO struct {
	User struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"user"`
	Products []domain.Product `json:"products"`
}

// ListProducts returns the catalog, optionally narrowed to one category.
func (c *Client) ListProducts(ctx context.Context, category string) (*domain.Catalog, error) {
	var query url.Values
	if category != "" {
		query = url.Values{"category": []string{category}}
	}

	var resp productsResponseDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", query, nil, &resp); err != nil {
		return nil, err
	}
	products := resp.Products
	if products == nil {
		products = []domain.Product{}
	}
	return &domain.Catalog{
		UserName: resp.User.Name,
		UserRole: resp.User.Role,
		Products: products,
	}, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var resp []domain.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/categories", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []domain.Category{}
	}
	return resp, nil
}
