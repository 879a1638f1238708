package repository

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"kusina-service/internal/entity"
	"testing"
	"time"
)

const ordersNS = "kusina.orders"

var placedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func storedOrder(status entity.OrderStatus) entity.Order {
	return entity.Order{
		ID:            primitive.NewObjectID(),
		UserID:        primitive.NewObjectID(),
		Customer:      entity.Customer{Name: "Juan Dela Cruz", Email: "juan@example.com"},
		Items:         []entity.OrderItem{{ProductID: "tapsilog", Name: "Tapsilog", Price: 100, Quantity: 2}},
		Total:         200,
		PaymentMethod: entity.PaymentGCash,
		PaymentStatus: entity.PaymentPending,
		OrderStatus:   status,
		CreatedAt:     placedAt,
		UpdatedAt:     placedAt,
	}
}

func orderDoc(t *testing.T, order entity.Order) bson.D {
	t.Helper()
	raw, err := bson.Marshal(order)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

// countReply answers the aggregate CountDocuments sends.
func countReply(n int32) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

// noMatchReply is a findAndModify that matched nothing.
func noMatchReply() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
}

type findAndModifyCommand struct {
	Query  bson.M `bson:"query"`
	Update bson.M `bson:"update"`
}

func sentFindAndModify(mt *mtest.T) findAndModifyCommand {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "findAndModify", evt.CommandName)
	var cmd findAndModifyCommand
	require.NoError(mt, bson.Unmarshal(evt.Command, &cmd))
	return cmd
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("moves the order when the status still matches", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		order := storedOrder(entity.OrderConfirmed)
		at := placedAt.Add(time.Minute)
		order.UpdatedAt = at
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: orderDoc(mt.T, order)}))

		updated, err := repo.UpdateStatus(ctx, order.ID, entity.OrderPending, entity.OrderConfirmed, at)
		require.NoError(mt, err)
		assert.Equal(mt, order.ID, updated.ID)
		assert.Equal(mt, entity.OrderConfirmed, updated.OrderStatus)
		assert.True(mt, updated.UpdatedAt.Equal(at))

		cmd := sentFindAndModify(mt)
		assert.Equal(mt, order.ID, cmd.Query["_id"])
		assert.Equal(mt, "pending", cmd.Query["orderStatus"])
		set, ok := cmd.Update["$set"].(bson.M)
		require.True(mt, ok)
		assert.Equal(mt, "confirmed", set["orderStatus"])
	})

	mt.Run("stale status is a conflict", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(noMatchReply(), countReply(1))

		updated, err := repo.UpdateStatus(ctx, primitive.NewObjectID(), entity.OrderPending, entity.OrderConfirmed, placedAt)
		assert.ErrorIs(mt, err, ErrConflict)
		assert.Nil(mt, updated)
	})

	mt.Run("missing order is not found", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(noMatchReply(), countReply(0))

		_, err := repo.UpdateStatus(ctx, primitive.NewObjectID(), entity.OrderPending, entity.OrderConfirmed, placedAt)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestOrderRepository_UpdatePaymentStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stale payment status is a conflict", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(noMatchReply(), countReply(1))

		_, err := repo.UpdatePaymentStatus(context.Background(), primitive.NewObjectID(), entity.PaymentProcessing, entity.PaymentPaid, placedAt)
		assert.ErrorIs(mt, err, ErrConflict)

		cmd := sentFindAndModify(mt)
		assert.Equal(mt, "processing", cmd.Query["paymentStatus"])
	})
}

func TestOrderRepository_SetPaymentDetails(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	details := entity.PaymentDetails{
		Provider:      "gcash",
		AccountNumber: "09171234567",
		AccountName:   "Kusina De Amadeo",
		Amount:        "200.00",
		Timestamp:     placedAt.Add(time.Minute),
	}

	mt.Run("first write records the details", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		order := storedOrder(entity.OrderPending)
		order.PaymentStatus = entity.PaymentProcessing
		order.PaymentDetails = &details
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: orderDoc(mt.T, order)}))

		updated, err := repo.SetPaymentDetails(ctx, order.ID, entity.PaymentPending, details, details.Timestamp)
		require.NoError(mt, err)
		require.NotNil(mt, updated.PaymentDetails)
		assert.Equal(mt, "200.00", updated.PaymentDetails.Amount)
		assert.Equal(mt, entity.PaymentProcessing, updated.PaymentStatus)

		cmd := sentFindAndModify(mt)
		assert.Equal(mt, "pending", cmd.Query["paymentStatus"])
		assert.Equal(mt, bson.M{"$exists": false}, cmd.Query["paymentDetails"])
	})

	mt.Run("second write is rejected", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(noMatchReply(), countReply(1))

		updated, err := repo.SetPaymentDetails(ctx, primitive.NewObjectID(), entity.PaymentPending, details, details.Timestamp)
		assert.ErrorIs(mt, err, ErrConflict)
		assert.Nil(mt, updated)
	})
}

func TestOrderRepository_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		order := storedOrder(entity.OrderReady)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, orderDoc(mt.T, order)))

		got, err := repo.FindByID(ctx, order.ID)
		require.NoError(mt, err)
		assert.Equal(mt, order.ID, got.ID)
		assert.Equal(mt, "Juan Dela Cruz", got.Customer.Name)
		assert.Equal(mt, entity.OrderReady, got.OrderStatus)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch))

		_, err := repo.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestOrderRepository_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("assigns an id", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		order := storedOrder(entity.OrderPending)
		order.ID = primitive.NilObjectID
		inserted, err := repo.Insert(ctx, &order)
		require.NoError(mt, err)
		assert.False(mt, inserted.ID.IsZero())
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		order := storedOrder(entity.OrderPending)
		_, err := repo.Insert(ctx, &order)
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestOrderRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pages with the total count", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		userID := primitive.NewObjectID()
		newer := storedOrder(entity.OrderPending)
		newer.UserID = userID
		older := storedOrder(entity.OrderPending)
		older.UserID = userID
		older.CreatedAt = placedAt.Add(-time.Hour)
		mt.AddMockResponses(
			countReply(7),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, orderDoc(mt.T, newer), orderDoc(mt.T, older)),
		)

		orders, total, err := repo.List(context.Background(), OrderFilter{
			UserID:   userID,
			Status:   entity.OrderPending,
			Page:     3,
			PageSize: 2,
		})
		require.NoError(mt, err)
		assert.EqualValues(mt, 7, total)
		require.Len(mt, orders, 2)
		assert.Equal(mt, newer.ID, orders[0].ID)
		assert.Equal(mt, older.ID, orders[1].ID)

		count := mt.GetStartedEvent()
		require.NotNil(mt, count)
		assert.Equal(mt, "aggregate", count.CommandName)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		require.Equal(mt, "find", find.CommandName)
		var cmd struct {
			Filter bson.M `bson:"filter"`
			Sort   bson.D `bson:"sort"`
			Skip   int64  `bson:"skip"`
			Limit  int64  `bson:"limit"`
		}
		require.NoError(mt, bson.Unmarshal(find.Command, &cmd))
		assert.EqualValues(mt, 4, cmd.Skip)
		assert.EqualValues(mt, 2, cmd.Limit)
		assert.Equal(mt, userID, cmd.Filter["userId"])
		assert.Equal(mt, "pending", cmd.Filter["orderStatus"])
		require.Len(mt, cmd.Sort, 2)
		assert.Equal(mt, "createdAt", cmd.Sort[0].Key)
	})

	mt.Run("empty page is not nil", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(countReply(0), mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch))

		orders, total, err := repo.List(context.Background(), OrderFilter{Page: 1, PageSize: 10})
		require.NoError(mt, err)
		assert.Zero(mt, total)
		assert.NotNil(mt, orders)
		assert.Empty(mt, orders)
	})
}

func TestOrderRepository_Stats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("folds the status groups", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "pending"}, {Key: "count", Value: int32(2)}, {Key: "amount", Value: 460.0}},
			bson.D{{Key: "_id", Value: "completed"}, {Key: "count", Value: int32(1)}, {Key: "amount", Value: 35.5}},
		))

		stats, err := repo.Stats(context.Background())
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, stats.Total)
		assert.InDelta(mt, 495.5, stats.TotalAmount, 0.0001)
		assert.EqualValues(mt, 2, stats.PerStatus[entity.OrderPending])
		assert.EqualValues(mt, 1, stats.PerStatus[entity.OrderCompleted])
		assert.EqualValues(mt, 0, stats.PerStatus[entity.OrderCancelled])

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "aggregate", evt.CommandName)
	})
}
