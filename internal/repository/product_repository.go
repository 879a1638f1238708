package repository

import (
	"context"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"kusina-service/internal/entity"
	"regexp"
)

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	var product entity.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, mapError(err)
	}
	return &product, nil
}

// FindBySlug looks a product up by its menu id (e.g. "tapsilog").
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	if err := r.coll.FindOne(ctx, bson.M{"productId": slug}).Decode(&product); err != nil {
		return nil, mapError(err)
	}
	return &product, nil
}

// Menu lists products for the public menu, sorted by category then name.
func (r *ProductRepository) Menu(ctx context.Context, category entity.Category, search string) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	return r.find(ctx, BuildMenuFilter(category, search), opts)
}

// All lists every product, newest first.
func (r *ProductRepository) All(ctx context.Context) ([]entity.Product, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	products := []entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, mapError(err)
	}
	return products, nil
}

func (r *ProductRepository) Insert(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

// Update replaces the editable fields of a product and returns the stored
// document.
func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	set := bson.M{
		"productId":   product.Slug,
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
		"image":       product.Image,
		"addons":      product.Addons,
		"isAvailable": product.IsAvailable,
		"updatedAt":   product.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated entity.Product
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": product.ID}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return nil, mapError(err)
	}
	return &updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, mapError(err)
}

// BuildMenuFilter matches available products in a category (unless empty or
// "All") and a case-insensitive search over name and description.
func BuildMenuFilter(category entity.Category, search string) bson.M {
	filter := bson.M{"isAvailable": true}
	if category != "" && category != entity.CategoryAll {
		filter["category"] = category
	}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}
