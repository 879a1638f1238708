package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
	"strings"
	"time"
)

const menuCachePattern = "products:*"

type ProductService struct {
	products ProductStore
	rdb      *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
}

// NewProductService creates a new instance of ProductService. With a nil
// rdb or a zero cacheTTL the menu is always read from the store.
func NewProductService(products ProductStore, rdb *redis.Client, cacheTTL time.Duration) *ProductService {
	return &ProductService{
		products: products,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// List returns the public menu sorted by category then name.
func (s *ProductService) List(ctx context.Context, category entity.Category, search string) ([]entity.Product, error) {
	if category == "" {
		category = entity.CategoryAll
	}
	if category != entity.CategoryAll && !category.Valid() {
		return nil, invalidInput("invalid category %q", category)
	}
	search = strings.TrimSpace(search)

	key := menuCacheKey(category, search)
	if products, ok := s.cachedMenu(ctx, key); ok {
		return products, nil
	}

	products, err := s.products.Menu(ctx, category, search)
	if err != nil {
		return nil, internalError(err, "listing products")
	}
	if products == nil {
		products = []entity.Product{}
	}
	s.cacheMenu(ctx, key, products)

	return products, nil
}

// AdminList returns every product, available or not, newest first.
func (s *ProductService) AdminList(ctx context.Context, p auth.Principal) ([]entity.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, internalError(err, "listing products")
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, p auth.Principal, id string) (*entity.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	productID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, storeError(err, "product", "loading product")
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, p auth.Principal, product entity.Product) (*entity.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	product.ID = primitive.NilObjectID
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := s.products.Insert(ctx, &product)
	if err != nil {
		return nil, storeError(err, "product "+product.Slug, "creating product")
	}

	logger.Info().Str("product", created.Slug).Msg("Product created")
	s.invalidateMenu(ctx)
	return created, nil
}

// Update replaces the editable fields of a product.
func (s *ProductService) Update(ctx context.Context, p auth.Principal, id string, product entity.Product) (*entity.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	productID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}
	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, storeError(err, "product", "loading product")
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	updated, err := s.products.Update(ctx, &product)
	if err != nil {
		return nil, storeError(err, "product "+product.Slug, "updating product")
	}

	logger.Info().Str("product", updated.Slug).Msg("Product updated")
	s.invalidateMenu(ctx)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if err := p.RequireAdmin(); err != nil {
		return authError(err)
	}
	productID, err := parseID(id, "product")
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return storeError(err, "product", "deleting product")
	}

	logger.Info().Str("product_id", id).Msg("Product deleted")
	s.invalidateMenu(ctx)
	return nil
}

func validateProduct(product *entity.Product) error {
	product.Slug = strings.TrimSpace(product.Slug)
	product.Name = strings.TrimSpace(product.Name)
	if err := validateStruct(product); err != nil {
		return err
	}
	if !product.Category.Valid() {
		return invalidInput("invalid category %q", product.Category)
	}
	return nil
}

func menuCacheKey(category entity.Category, search string) string {
	return fmt.Sprintf("products:%s:%s", category, strings.ToLower(search))
}

func (s *ProductService) cachedMenu(ctx context.Context, key string) ([]entity.Product, bool) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return nil, false
	}

	menuCache, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msgf("Error getting %s from cache", key)
		}
		return nil, false
	}

	var products []entity.Product
	if err := json.Unmarshal([]byte(menuCache), &products); err != nil {
		logger.Error().Err(err).Msgf("Error unmarshalling %s", key)
		return nil, false
	}
	return products, true
}

func (s *ProductService) cacheMenu(ctx context.Context, key string, products []entity.Product) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return
	}

	menuJSON, err := json.Marshal(products)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling %s", key)
		return
	}
	if err := s.rdb.Set(ctx, key, menuJSON, s.cacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting %s in cache", key)
	}
}

// invalidateMenu drops every cached menu listing after a catalog write.
func (s *ProductService) invalidateMenu(ctx context.Context) {
	if s.rdb == nil {
		return
	}

	var keys []string
	iter := s.rdb.Scan(ctx, 0, menuCachePattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Error().Err(err).Msg("Error scanning menu cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Error().Err(err).Msg("Error invalidating menu cache")
	}
}
