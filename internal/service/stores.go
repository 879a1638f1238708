package service

import (
	"context"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"kusina-service/internal/entity"
	"kusina-service/internal/repository"
	"time"
)

type OrderStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
	Insert(ctx context.Context, order *entity.Order) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to entity.OrderStatus, at time.Time) (*entity.Order, error)
	UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, from, to entity.PaymentStatus, at time.Time) (*entity.Order, error)
	SetPaymentDetails(ctx context.Context, id primitive.ObjectID, from entity.PaymentStatus, details entity.PaymentDetails, at time.Time) (*entity.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]entity.Order, int64, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Order, error)
	Stats(ctx context.Context) (*entity.OrderStats, error)
}

type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Product, error)
	Menu(ctx context.Context, category entity.Category, search string) ([]entity.Product, error)
	All(ctx context.Context) ([]entity.Product, error)
	Insert(ctx context.Context, product *entity.Product) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) (*entity.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Insert(ctx context.Context, user *entity.User) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) (*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, settings *entity.Settings) error
}

// Notifier is told about order lifecycle events. Errors are logged by the
// caller and never fail the operation that triggered them.
type Notifier interface {
	OrderCreated(ctx context.Context, order *entity.Order) error
	OrderStatusChanged(ctx context.Context, order *entity.Order) error
}
