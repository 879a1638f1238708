package migrations

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"kusina-service/internal/entity"
	"kusina-service/internal/repository"
	"testing"
	"time"
)

type fakeMenuStore struct {
	existing int64
	inserted []entity.Product
	failAt   int
}

func (f *fakeMenuStore) Count(context.Context) (int64, error) {
	return f.existing, nil
}

func (f *fakeMenuStore) Insert(_ context.Context, product *entity.Product) (*entity.Product, error) {
	if f.failAt > 0 && len(f.inserted)+1 == f.failAt {
		return nil, errors.New("write failed")
	}
	f.inserted = append(f.inserted, *product)
	return product, nil
}

func TestDefaultMenu(t *testing.T) {
	menu := DefaultMenu()
	require.NotEmpty(t, menu)

	slugs := map[string]bool{}
	for _, p := range menu {
		assert.False(t, slugs[p.Slug], "duplicate slug %s", p.Slug)
		slugs[p.Slug] = true
		assert.True(t, p.Category.Valid(), p.Slug)
		assert.Greater(t, p.Price, 0.0, p.Slug)
		assert.NotEmpty(t, p.Name, p.Slug)
		assert.NotEmpty(t, p.Description, p.Slug)
	}
	assert.True(t, slugs["tapsilog"])
}

func TestSeedMenu(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("empty catalog", func(t *testing.T) {
		store := &fakeMenuStore{}
		n, err := SeedMenu(context.Background(), store, now)
		require.NoError(t, err)
		assert.Equal(t, len(DefaultMenu()), n)
		require.Len(t, store.inserted, n)
		for _, p := range store.inserted {
			assert.True(t, p.IsAvailable)
			assert.True(t, p.CreatedAt.Equal(now))
		}
	})

	t.Run("existing catalog is left alone", func(t *testing.T) {
		store := &fakeMenuStore{existing: 3}
		n, err := SeedMenu(context.Background(), store, now)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, store.inserted)
	})

	t.Run("insert failure", func(t *testing.T) {
		store := &fakeMenuStore{failAt: 3}
		n, err := SeedMenu(context.Background(), store, now)
		require.Error(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestIndexes(t *testing.T) {
	indexes := Indexes()

	unique := func(coll, key string) bool {
		for _, m := range indexes[coll] {
			keys := m.Keys.(bson.D)
			if len(keys) == 1 && keys[0].Key == key {
				return m.Options != nil && m.Options.Unique != nil && *m.Options.Unique
			}
		}
		return false
	}

	assert.True(t, unique(repository.ProductsCollection, "productId"))
	assert.True(t, unique(repository.UsersCollection, "email"))
	assert.Len(t, indexes[repository.OrdersCollection], 3)
}
