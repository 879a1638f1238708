package entity

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type PaymentMethod string

const (
	PaymentGCash PaymentMethod = "gcash"
	PaymentCOD   PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentGCash || m == PaymentCOD
}

// Label is the customer facing name of the payment method.
func (m PaymentMethod) Label() string {
	if m == PaymentGCash {
		return "GCash"
	}
	return "Cash on Pickup"
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Customer       Customer           `bson:"customer" json:"customer"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Total          float64            `bson:"total" json:"total"`
	PaymentMethod  PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus  PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus    OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	DeliveryInfo   *DeliveryInfo      `bson:"deliveryInfo,omitempty" json:"deliveryInfo,omitempty"`
	PaymentDetails *PaymentDetails    `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Customer is the name and email of the account that placed the order, as
// they were when the order was created.
type Customer struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

type OrderItem struct {
	ProductID string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
	Addons    []Addon `bson:"addons,omitempty" json:"addons,omitempty"`
}

type Addon struct {
	Name  string  `bson:"name" json:"name" validate:"required"`
	Price float64 `bson:"price" json:"price" validate:"gt=0"`
}

type DeliveryInfo struct {
	Address      string `bson:"address" json:"address" validate:"required,min=10"`
	Contact      string `bson:"contact" json:"contact" validate:"required,phmobile"`
	Instructions string `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// PaymentDetails is written once, when an electronic payment is initiated.
type PaymentDetails struct {
	Provider      string    `bson:"provider" json:"provider"`
	AccountNumber string    `bson:"accountNumber" json:"accountNumber"`
	AccountName   string    `bson:"accountName" json:"accountName"`
	Amount        string    `bson:"amount" json:"amount"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
}

// LineTotal returns (price + sum of addon prices) * quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	unit := decimal.NewFromFloat(i.Price)
	for _, a := range i.Addons {
		unit = unit.Add(decimal.NewFromFloat(a.Price))
	}
	return unit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums the line totals of items, rounded to centavos.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

// OrderStats is the dashboard aggregate over every stored order.
type OrderStats struct {
	Total       int64                 `json:"total"`
	PerStatus   map[OrderStatus]int64 `json:"perStatus"`
	TotalAmount float64               `json:"totalAmount"`
}

// OrderEvent is published for every order creation and status change.
type OrderEvent struct {
	Type       string    `json:"type"`
	Order      Order     `json:"order"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	EventOrderCreated       = "created"
	EventOrderStatusChanged = "updated"
)
