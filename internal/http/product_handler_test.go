package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func TestProducts_Get(t *testing.T) {
	b, router := setupRouter(t)

	for i := 0; i < 2; i++ {
		rec := serve(router, newRequest(http.MethodGet, "/api/v1/products?category=Clothing", ""))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProductsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "CUSTOMER", resp.UserRole)
		require.Len(t, resp.Products, 1)
		assert.Equal(t, "Socks", resp.Products[0].Name)
	}

	// second read is served from the cache
	assert.Equal(t, []string{"list_products:Clothing"}, b.callLog())
}

func TestProducts_Categories(t *testing.T) {
	_, router := setupRouter(t)

	rec := serve(router, newRequest(http.MethodGet, "/api/v1/products/categories", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []domain.Category
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []domain.Category{{ID: 1, Name: "Clothing"}}, resp)
}
