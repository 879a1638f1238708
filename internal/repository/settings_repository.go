package repository

import (
	"context"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"kusina-service/internal/entity"
)

// settingsID is the _id of the single settings document.
const settingsID = "store"

type SettingsRepository struct {
	coll *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{coll: db.Collection(SettingsCollection)}
}

func (r *SettingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	var settings entity.Settings
	if err := r.coll.FindOne(ctx, bson.M{"_id": settingsID}).Decode(&settings); err != nil {
		return nil, mapError(err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": settingsID}, settings, opts)
	return mapError(err)
}
