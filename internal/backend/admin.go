package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type addProductDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       number `json:"price"`
	Stock       int    `json:"stock"`
	CategoryID  int64  `json:"categoryId"`
	ImageURL    string `json:"imageUrl"`
}

type productIDDTO struct {
	ProductID int64 `json:"productId"`
}

type userIDDTO struct {
	UserID int64 `json:"userId"`
}

func (c *Client) AddProduct(ctx context.Context, p domain.NewProduct) (*domain.ListedProduct, error) {
	var resp domain.ListedProduct
	req := addProductDTO{
		Name:        p.Name,
		Description: p.Description,
		Price:       number{p.Price},
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/admin/products/add", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/products/delete", nil, productIDDTO{ProductID: productID}, nil)
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*domain.UserAccount, error) {
	var resp domain.UserAccount
	if err := c.doJSON(ctx, http.MethodPost, "/admin/user/getbyid", nil, userIDDTO{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ModifyUser(ctx context.Context, u domain.UserUpdate) (*domain.UserAccount, error) {
	var resp domain.UserAccount
	if err := c.doJSON(ctx, http.MethodPut, "/admin/user/modify", nil, u, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Business fetches the sales report for q. The query is expected to be validated.
func (c *Client) Business(ctx context.Context, q domain.BusinessQuery) (*domain.BusinessReport, error) {
	query := url.Values{}
	switch q.Period {
	case domain.BusinessDaily:
		query.Set("date", q.Date)
	case domain.BusinessMonthly:
		query.Set("month", strconv.Itoa(q.Month))
		query.Set("year", strconv.Itoa(q.Year))
	case domain.BusinessYearly:
		query.Set("year", strconv.Itoa(q.Year))
	}

	var resp domain.BusinessReport
	if err := c.doJSON(ctx, http.MethodGet, "/admin/business/"+string(q.Period), query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
