package migrations

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"kusina-service/internal/entity"
	"kusina-service/internal/repository"
	"os"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "migrations").Logger()

// Indexes lists the indexes every collection needs, keyed by collection.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		repository.OrdersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderStatus", Value: 1}}},
		},
		repository.ProductsCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}},
		},
		repository.UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
}

// EnsureIndexes creates the indexes if they do not exist, retrying each
// collection while the database is still coming up.
func EnsureIndexes(ctx context.Context, db *mongo.Database, retries int) error {
	for coll, models := range Indexes() {
		var err error
		for i := 0; i <= retries; i++ {
			if i > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(1 * time.Second):
				}
			}
			_, err = db.Collection(coll).Indexes().CreateMany(ctx, models)
			if err == nil {
				break
			}
			logger.Warn().Err(err).Msgf("Retry %d: failed to create indexes on %s", i+1, coll)
		}
		if err != nil {
			return fmt.Errorf("creating indexes on %s: %w", coll, err)
		}
		logger.Info().Msgf("Indexes ready on %s", coll)
	}
	return nil
}

// MenuStore is what SeedMenu needs from the product repository.
type MenuStore interface {
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, product *entity.Product) (*entity.Product, error)
}

// SeedMenu fills an empty catalog with the default menu. It does nothing
// when any product already exists.
func SeedMenu(ctx context.Context, store MenuStore, now time.Time) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	now = now.UTC().Truncate(time.Millisecond)
	seeded := 0
	for _, product := range DefaultMenu() {
		product.IsAvailable = true
		product.CreatedAt = now
		product.UpdatedAt = now
		if _, err := store.Insert(ctx, &product); err != nil {
			return seeded, fmt.Errorf("seeding %s: %w", product.Slug, err)
		}
		seeded++
	}

	logger.Info().Msgf("Seeded %d menu items", seeded)
	return seeded, nil
}
