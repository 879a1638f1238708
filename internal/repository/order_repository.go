package repository

import (
	"context"
	"errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"kusina-service/internal/entity"
	"regexp"
	"time"
)

// OrderFilter narrows an order listing. Zero values mean "no filter".
type OrderFilter struct {
	UserID   primitive.ObjectID
	Status   entity.OrderStatus
	Search   string
	Page     int
	PageSize int
}

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(OrdersCollection)}
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	var order entity.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// UpdateStatus sets orderStatus to `to` only if it is still `from`.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to entity.OrderStatus, at time.Time) (*entity.Order, error) {
	return r.compareAndSet(ctx, id,
		bson.M{"orderStatus": from},
		bson.M{"orderStatus": to, "updatedAt": at},
	)
}

// UpdatePaymentStatus sets paymentStatus to `to` only if it is still `from`.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, from, to entity.PaymentStatus, at time.Time) (*entity.Order, error) {
	return r.compareAndSet(ctx, id,
		bson.M{"paymentStatus": from},
		bson.M{"paymentStatus": to, "updatedAt": at},
	)
}

// SetPaymentDetails records the payment provider snapshot. It only succeeds
// while no snapshot exists and the payment status is still `from`.
func (r *OrderRepository) SetPaymentDetails(ctx context.Context, id primitive.ObjectID, from entity.PaymentStatus, details entity.PaymentDetails, at time.Time) (*entity.Order, error) {
	return r.compareAndSet(ctx, id,
		bson.M{"paymentStatus": from, "paymentDetails": bson.M{"$exists": false}},
		bson.M{"paymentStatus": entity.PaymentProcessing, "paymentDetails": details, "updatedAt": at},
	)
}

func (r *OrderRepository) compareAndSet(ctx context.Context, id primitive.ObjectID, expect, set bson.M) (*entity.Order, error) {
	filter := bson.M{"_id": id}
	for k, v := range expect {
		filter[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated entity.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, mapError(err)
	}

	// Nothing matched: either the order is gone or its state moved on.
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, mapError(err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]entity.Order, int64, error) {
	filter := BuildOrderFilter(f)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapError(err)
	}

	cursor, err := r.coll.Find(ctx, filter, listOptions(f.Page, f.PageSize))
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer cursor.Close(ctx)

	orders := []entity.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, mapError(err)
	}
	return orders, total, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Order, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	orders := []entity.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// Stats groups every order by status in a single pipeline.
func (r *OrderRepository) Stats(ctx context.Context) (*entity.OrderStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$orderStatus"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "amount", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var groups []statusGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, mapError(err)
	}
	return foldStats(groups), nil
}

type statusGroup struct {
	Status entity.OrderStatus `bson:"_id"`
	Count  int64              `bson:"count"`
	Amount float64            `bson:"amount"`
}

func foldStats(groups []statusGroup) *entity.OrderStats {
	stats := &entity.OrderStats{PerStatus: make(map[entity.OrderStatus]int64, len(entity.OrderStatuses))}
	for _, s := range entity.OrderStatuses {
		stats.PerStatus[s] = 0
	}
	for _, g := range groups {
		stats.Total += g.Count
		stats.TotalAmount += g.Amount
		if g.Status.Valid() {
			stats.PerStatus[g.Status] = g.Count
		}
	}
	return stats
}

// BuildOrderFilter turns an OrderFilter into a MongoDB query document.
func BuildOrderFilter(f OrderFilter) bson.M {
	filter := bson.M{}
	if !f.UserID.IsZero() {
		filter["userId"] = f.UserID
	}
	if f.Status != "" {
		filter["orderStatus"] = f.Status
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := bson.A{
			bson.M{"customer.name": pattern},
			bson.M{"customer.email": pattern},
		}
		if id, err := primitive.ObjectIDFromHex(f.Search); err == nil {
			or = append(or, bson.M{"_id": id})
		}
		filter["$or"] = or
	}
	return filter
}

func listOptions(page, pageSize int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * pageSize)).SetLimit(int64(pageSize))
	}
	return opts
}
