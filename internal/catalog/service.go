package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Backend interface {
	ListProducts(ctx context.Context, category string) (*domain.Catalog, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Service serves the product catalog from the cache, falling back to the backend.
type Service struct {
	cache  Cache
	logger *zap.Logger
	sfg    singleflight.Group
}

func NewService(cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cache: cache, logger: logger}
}

// Products returns the catalog as the given user sees it. The product list carries
// the caller's name and role, so entries are cached per user.
func (s *Service) Products(ctx context.Context, b Backend, username, category string) (*domain.Catalog, error) {
	key := productsKey(username, category)
	v, err, _ := s.sfg.Do(key, func() (any, error) {
		var cached domain.Catalog
		if s.lookup(ctx, key, &cached) {
			return &cached, nil
		}

		catalog, err := b.ListProducts(ctx, category)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, catalog)
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Catalog), nil
}

func (s *Service) Categories(ctx context.Context, b Backend) ([]domain.Category, error) {
	key := categoriesKey()
	v, err, _ := s.sfg.Do(key, func() (any, error) {
		var cached []domain.Category
		if s.lookup(ctx, key, &cached) {
			return cached, nil
		}

		categories, err := b.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, categories)
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Category), nil
}

// Invalidate drops every cached product listing of one user.
func (s *Service) Invalidate(ctx context.Context, username string) error {
	n, err := s.cache.DeleteMatching(ctx, userProductsPattern(username))
	if err != nil {
		return fmt.Errorf("failed to invalidate catalog for %s: %w", username, err)
	}
	s.logger.Debug("catalog invalidated", zap.String("username", username), zap.Int("keys", n))
	return nil
}

// InvalidateAll drops every cached product listing, e.g. after stock changed.
func (s *Service) InvalidateAll(ctx context.Context) error {
	n, err := s.cache.DeleteMatching(ctx, allProductsPattern)
	if err != nil {
		return fmt.Errorf("failed to invalidate catalog: %w", err)
	}
	s.logger.Debug("catalog invalidated", zap.Int("keys", n))
	return nil
}

func (s *Service) lookup(ctx context.Context, key string, out any) bool {
	err := s.cache.Get(ctx, key, out)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(context.WithoutCancel(ctx), key, value); err != nil {
		s.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
}
