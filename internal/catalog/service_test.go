package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type mockBackend struct {
	productCalls  atomic.Int32
	categoryCalls atomic.Int32
	err           error
	delay         time.Duration
}

func (b *mockBackend) ListProducts(_ context.Context, category string) (*domain.Catalog, error) {
	b.productCalls.Add(1)
	time.Sleep(b.delay)
	if b.err != nil {
		return nil, b.err
	}
	return &domain.Catalog{
		UserName: "asha",
		UserRole: "CUSTOMER",
		Products: []domain.Product{
			{ID: 1, Name: "Socks " + category, Price: decimal.NewFromInt(200), Stock: 4},
		},
	}, nil
}

func (b *mockBackend) ListCategories(context.Context) ([]domain.Category, error) {
	b.categoryCalls.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return []domain.Category{{ID: 1, Name: "Shoes"}}, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string, any) error { return errors.New("redis down") }
func (failingCache) Set(context.Context, string, any) error { return errors.New("redis down") }
func (failingCache) Delete(context.Context, string) error { return errors.New("redis down") }
func (failingCache) DeleteMatching(context.Context, string) (int, error) {
	return 0, errors.New("redis down")
}

func TestProducts_CachesResult(t *testing.T) {
	cache, _ := setupTestRedis(t)
	svc := NewService(cache, nil)
	b := &mockBackend{}

	first, err := svc.Products(context.Background(), b, "asha", "Shoes")
	require.NoError(t, err)
	second, err := svc.Products(context.Background(), b, "asha", "Shoes")
	require.NoError(t, err)

	assert.Equal(t, int32(1), b.productCalls.Load())
	assert.Equal(t, first.Products[0].Name, second.Products[0].Name)
	assert.True(t, second.Products[0].Price.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "CUSTOMER", second.UserRole)
}

func TestProducts_KeyedByCategory(t *testing.T) {
	cache, _ := setupTestRedis(t)
	svc := NewService(cache, nil)
	b := &mockBackend{}

	_, err := svc.Products(context.Background(), b, "asha", "")
	require.NoError(t, err)
	_, err = svc.Products(context.Background(), b, "asha", "Shoes")
	require.NoError(t, err)

	assert.Equal(t, int32(2), b.productCalls.Load())
}

func TestProducts_ConcurrentMissesCollapse(t *testing.T) {
	cache, _ := setupTestRedis(t)
	svc := NewService(cache, nil)
	b := &mockBackend{delay: 50 * time.Millisecond}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Products(context.Background(), b, "asha", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), b.productCalls.Load())
}

func TestProducts_BackendErrorNotCached(t *testing.T) {
	cache, mr := setupTestRedis(t)
	svc := NewService(cache, nil)
	b := &mockBackend{err: errors.New("backend down")}

	_, err := svc.Products(context.Background(), b, "asha", "")

	require.Error(t, err)
	assert.False(t, mr.Exists(productsKey("asha", "")))
}

func TestProducts_CacheFailureFallsThrough(t *testing.T) {
	svc := NewService(failingCache{}, nil)
	b := &mockBackend{}

	catalog, err := svc.Products(context.Background(), b, "asha", "")

	require.NoError(t, err)
	assert.Len(t, catalog.Products, 1)
}

func TestCategories_CachesResult(t *testing.T) {
	cache, _ := setupTestRedis(t)
	svc := NewService(cache, nil)
	b := &mockBackend{}

	for i := 0; i < 3; i++ {
		got, err := svc.Categories(context.Background(), b)
		require.NoError(t, err)
		assert.Equal(t, []domain.Category{{ID: 1, Name: "Shoes"}}, got)
	}

	assert.Equal(t, int32(1), b.categoryCalls.Load())
}

func TestInvalidate(t *testing.T) {
	cache, mr := setupTestRedis(t)
	svc := NewService(cache, nil)
	b := &mockBackend{}
	ctx := context.Background()
	for _, category := range []string{"", "Shoes", "Hats"} {
		_, err := svc.Products(ctx, b, "asha", category)
		require.NoError(t, err)
	}
	_, err := svc.Products(ctx, b, "ravi", "Shoes")
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, "asha"))

	assert.False(t, mr.Exists(productsKey("asha", "")))
	assert.False(t, mr.Exists(productsKey("asha", "Shoes")))
	assert.False(t, mr.Exists(productsKey("asha", "Hats")))
	assert.True(t, mr.Exists(productsKey("ravi", "Shoes")))
}

func TestInvalidate_GlobInUsername(t *testing.T) {
	cache, mr := setupTestRedis(t)
	svc := NewService(cache, nil)
	ctx := context.Background()
	_, err := svc.Products(ctx, &mockBackend{}, "ravi", "")
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, "*"))

	assert.True(t, mr.Exists(productsKey("ravi", "")))
}

func TestInvalidateAll(t *testing.T) {
	cache, mr := setupTestRedis(t)
	svc := NewService(cache, nil)
	b := &mockBackend{}
	ctx := context.Background()
	for _, user := range []string{"asha", "ravi"} {
		_, err := svc.Products(ctx, b, user, "")
		require.NoError(t, err)
	}
	_, err := svc.Categories(ctx, b)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateAll(ctx))

	assert.False(t, mr.Exists(productsKey("asha", "")))
	assert.False(t, mr.Exists(productsKey("ravi", "")))
	assert.True(t, mr.Exists(categoriesKey()))
}

func TestInvalidateAll_CacheError(t *testing.T) {
	svc := NewService(failingCache{}, nil)

	assert.Error(t, svc.InvalidateAll(context.Background()))
}
