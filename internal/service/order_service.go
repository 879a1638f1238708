package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
	"kusina-service/internal/repository"
	"math"
	"os"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "service").Logger()

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// totalTolerance is how far a client supplied total may be from the computed
// one before the order is rejected.
var totalTolerance = decimal.New(5, -3)

// GCashAccount receives manual GCash payments.
type GCashAccount struct {
	Number string
	Name   string
}

// OrderService owns the order lifecycle: creation, status and payment
// transitions, and the read side used by customers and the dashboard.
type OrderService struct {
	orders         OrderStore
	products       ProductStore
	users          UserStore
	notifier       Notifier
	rdb            *redis.Client
	idempotencyTTL time.Duration
	gcash          GCashAccount
	now            func() time.Time
}

// NewOrderService creates a new instance of OrderService. rdb may be nil, in
// which case idempotency keys are not checked.
func NewOrderService(orders OrderStore, products ProductStore, users UserStore, notifier Notifier, rdb *redis.Client, idempotencyTTL time.Duration, gcash GCashAccount) *OrderService {
	return &OrderService{
		orders:         orders,
		products:       products,
		users:          users,
		notifier:       notifier,
		rdb:            rdb,
		idempotencyTTL: idempotencyTTL,
		gcash:          gcash,
		now:            time.Now,
	}
}

type OrderItemInput struct {
	ID       string         `json:"id"`
	Quantity int            `json:"quantity"`
	Addons   []entity.Addon `json:"addons,omitempty"`
}

type CreateOrderInput struct {
	Items         []OrderItemInput     `json:"items"`
	Total         *float64             `json:"total,omitempty"`
	PaymentMethod entity.PaymentMethod `json:"paymentMethod"`
	DeliveryInfo  *entity.DeliveryInfo `json:"deliveryInfo,omitempty"`
	// IdempotencyKey comes from the Idempotent-Key header.
	IdempotencyKey string `json:"-"`
}

type ListOrdersInput struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

type OrderPage struct {
	Orders   []entity.Order `json:"orders"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type GCashPayment struct {
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Amount        string `json:"amount"`
	Reference     string `json:"reference"`
}

// CreateOrder validates the cart, snapshots the catalog entries it refers to,
// prices it and stores it as a pending order.
func (s *OrderService) CreateOrder(ctx context.Context, p auth.Principal, in CreateOrderInput) (*entity.Order, error) {
	if err := p.RequireUser(); err != nil {
		return nil, authError(err)
	}
	if len(in.Items) == 0 {
		return nil, invalidInput("order must have at least one item")
	}
	if !in.PaymentMethod.Valid() {
		return nil, invalidInput("invalid payment method %q", in.PaymentMethod)
	}
	for i, item := range in.Items {
		if item.ID == "" {
			return nil, invalidInput("items[%d].id is required", i)
		}
		if item.Quantity < 1 {
			return nil, invalidInput("items[%d].quantity must be at least 1", i)
		}
	}
	if in.DeliveryInfo != nil {
		if err := validateStruct(in.DeliveryInfo); err != nil {
			return nil, err
		}
	}

	items, err := s.snapshotItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	total := entity.ComputeTotal(items)
	if in.Total != nil && decimal.NewFromFloat(*in.Total).Sub(total).Abs().GreaterThan(totalTolerance) {
		return nil, invalidInput("total %.2f does not match the order items (%s)", *in.Total, total.StringFixed(2))
	}

	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
		}
		return nil, internalError(err, "loading customer")
	}

	claimed, err := s.claimIdempotentKey(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	order := &entity.Order{
		UserID:        user.ID,
		Customer:      entity.Customer{Name: user.Name, Email: user.Email},
		Items:         items,
		Total:         total.InexactFloat64(),
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: entity.InitialPaymentStatus(in.PaymentMethod),
		OrderStatus:   entity.OrderPending,
		DeliveryInfo:  in.DeliveryInfo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	createdOrder, err := s.orders.Insert(ctx, order)
	if err != nil {
		if claimed {
			s.releaseIdempotentKey(ctx, in.IdempotencyKey)
		}
		return nil, storeError(err, "order", "creating order")
	}

	logger.Info().Str("order_id", createdOrder.ID.Hex()).Str("payment_method", string(createdOrder.PaymentMethod)).Msg("Order created")
	s.notify(ctx, entity.EventOrderCreated, createdOrder)

	return createdOrder, nil
}

// snapshotItems copies name, price and addon prices from the catalog so that
// later catalog edits never change a placed order.
func (s *OrderService) snapshotItems(ctx context.Context, in []OrderItemInput) ([]entity.OrderItem, error) {
	items := make([]entity.OrderItem, 0, len(in))
	for i, req := range in {
		product, err := s.products.FindBySlug(ctx, req.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalidInput("items[%d]: unknown product %q", i, req.ID)
			}
			return nil, internalError(err, "loading product "+req.ID)
		}
		if !product.IsAvailable {
			return nil, invalidInput("items[%d]: %s is not available", i, product.Name)
		}

		item := entity.OrderItem{
			ProductID: product.Slug,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  req.Quantity,
			Image:     product.Image,
		}
		seen := make(map[string]bool, len(req.Addons))
		for _, wanted := range req.Addons {
			addon, ok := product.Addon(wanted.Name)
			if !ok {
				return nil, invalidInput("items[%d]: %s has no addon %q", i, product.Name, wanted.Name)
			}
			if seen[addon.Name] {
				return nil, invalidInput("items[%d]: addon %q listed more than once", i, addon.Name)
			}
			seen[addon.Name] = true
			item.Addons = append(item.Addons, addon)
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Only admins may do
// this and only legal transitions are accepted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, p auth.Principal, id string, target entity.OrderStatus) (*entity.Order, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	if !target.Valid() {
		return nil, invalidInput("invalid order status %q", target)
	}
	orderID, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order", "loading order")
	}
	if !order.OrderStatus.CanTransitionTo(target) {
		return nil, invalidInput("cannot change order status from %s to %s", order.OrderStatus, target)
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, order.OrderStatus, target, s.nextUpdatedAt(order.UpdatedAt))
	if err != nil {
		return nil, storeError(err, "order", "updating order status")
	}

	logger.Info().Str("order_id", updated.ID.Hex()).Msgf("Order status changed %s -> %s", order.OrderStatus, updated.OrderStatus)
	s.notify(ctx, entity.EventOrderStatusChanged, updated)

	return updated, nil
}

// UpdatePaymentStatus is the manual override admins use after checking a
// payment, e.g. marking a GCash transfer as paid.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, p auth.Principal, id string, target entity.PaymentStatus) (*entity.Order, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	if !target.Valid() {
		return nil, invalidInput("invalid payment status %q", target)
	}
	orderID, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order", "loading order")
	}
	if !order.PaymentStatus.CanTransitionTo(target) {
		return nil, invalidInput("cannot change payment status from %s to %s", order.PaymentStatus, target)
	}

	updated, err := s.orders.UpdatePaymentStatus(ctx, orderID, order.PaymentStatus, target, s.nextUpdatedAt(order.UpdatedAt))
	if err != nil {
		return nil, storeError(err, "order", "updating payment status")
	}

	logger.Info().Str("order_id", updated.ID.Hex()).Msgf("Payment status changed %s -> %s", order.PaymentStatus, updated.PaymentStatus)
	return updated, nil
}

// InitiateGCashPayment records, once, the GCash account the customer pays
// into and returns the details to show them.
func (s *OrderService) InitiateGCashPayment(ctx context.Context, p auth.Principal, id string, amount float64) (*GCashPayment, error) {
	if err := p.RequireUser(); err != nil {
		return nil, authError(err)
	}
	orderID, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, invalidInput("amount must be greater than 0")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order", "loading order")
	}
	if !p.Owns(order) {
		return nil, forbidden("order belongs to another customer")
	}
	if order.PaymentMethod != entity.PaymentGCash {
		return nil, invalidInput("order is not paid with GCash")
	}
	if order.PaymentDetails != nil {
		return nil, invalidInput("payment already initiated")
	}
	if !order.PaymentStatus.CanTransitionTo(entity.PaymentProcessing) && order.PaymentStatus != entity.PaymentProcessing {
		return nil, invalidInput("payment is already %s", order.PaymentStatus)
	}
	paid := decimal.NewFromFloat(amount).Round(2)
	if paid.Sub(decimal.NewFromFloat(order.Total)).Abs().GreaterThan(totalTolerance) {
		return nil, invalidInput("amount %s does not match the order total %.2f", paid.StringFixed(2), order.Total)
	}

	at := s.nextUpdatedAt(order.UpdatedAt)
	details := entity.PaymentDetails{
		Provider:      string(entity.PaymentGCash),
		AccountNumber: s.gcash.Number,
		AccountName:   s.gcash.Name,
		Amount:        paid.StringFixed(2),
		Timestamp:     at,
	}
	if _, err := s.orders.SetPaymentDetails(ctx, orderID, order.PaymentStatus, details, at); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalidInput("payment already initiated")
		}
		return nil, storeError(err, "order", "recording payment details")
	}

	logger.Info().Str("order_id", order.ID.Hex()).Msg("GCash payment initiated")
	return &GCashPayment{
		AccountNumber: details.AccountNumber,
		AccountName:   details.AccountName,
		Amount:        details.Amount,
		Reference:     "ORDER-" + order.ID.Hex(),
	}, nil
}

// GetOrder returns an order to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, p auth.Principal, id string) (*entity.Order, error) {
	if err := p.RequireUser(); err != nil {
		return nil, authError(err)
	}
	orderID, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order", "loading order")
	}
	if !p.IsAdmin() && !p.Owns(order) {
		return nil, forbidden("order belongs to another customer")
	}
	return order, nil
}

// ListOrders pages through orders newest first. Customers only ever see
// their own orders.
func (s *OrderService) ListOrders(ctx context.Context, p auth.Principal, in ListOrdersInput) (*OrderPage, error) {
	if err := p.RequireUser(); err != nil {
		return nil, authError(err)
	}

	filter := repository.OrderFilter{
		Search:   in.Search,
		Page:     in.Page,
		PageSize: in.PageSize,
	}
	if in.Status != "" && in.Status != "all" {
		status := entity.OrderStatus(in.Status)
		if !status.Valid() {
			return nil, invalidInput("invalid order status %q", in.Status)
		}
		filter.Status = status
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Page > math.MaxInt32/filter.PageSize {
		return nil, invalidInput("page %d is out of range", filter.Page)
	}
	if !p.IsAdmin() {
		filter.UserID = p.ID
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "listing orders")
	}
	return &OrderPage{Orders: orders, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Stats aggregates order counts per status and the amount ordered.
func (s *OrderService) Stats(ctx context.Context, p auth.Principal) (*entity.OrderStats, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, authError(err)
	}
	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, internalError(err, "aggregating order stats")
	}
	return stats, nil
}

// notify hands the event to the notifier; failures are logged only.
func (s *OrderService) notify(ctx context.Context, event string, order *entity.Order) {
	if s.notifier == nil {
		return
	}

	var err error
	switch event {
	case entity.EventOrderCreated:
		err = s.notifier.OrderCreated(ctx, order)
	case entity.EventOrderStatusChanged:
		err = s.notifier.OrderStatusChanged(ctx, order)
	}
	if err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msgf("Error sending order %s notification", event)
	}
}

// nextUpdatedAt returns the current time at storage precision, nudged past
// prev so that updatedAt strictly increases.
func (s *OrderService) nextUpdatedAt(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		now = prev.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return now
}

func (s *OrderService) claimIdempotentKey(ctx context.Context, key string) (bool, error) {
	if key == "" || s.rdb == nil {
		return false, nil
	}

	ok, err := s.rdb.SetNX(ctx, idempotencyKey(key), "exists", s.idempotencyTTL).Result()
	if err != nil {
		return false, internalError(err, "checking idempotent key")
	}
	if !ok {
		return false, invalidInput("duplicate request: idempotent key already used")
	}
	return true, nil
}

func (s *OrderService) releaseIdempotentKey(ctx context.Context, key string) {
	if err := s.rdb.Del(ctx, idempotencyKey(key)).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error releasing idempotent key %s", key)
	}
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

// parseID treats a malformed id like any other id that resolves to nothing.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound(what)
	}
	return oid, nil
}
