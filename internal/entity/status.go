package entity

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in fulfillment order.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderConfirmed,
	OrderPreparing,
	OrderReady,
	OrderCompleted,
	OrderCancelled,
}

// orderTransitions holds the legal targets of every non-terminal status.
// Progress only moves forward (skipping steps is allowed) and any open order
// can be cancelled.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled},
	OrderConfirmed: {OrderPreparing, OrderReady, OrderCompleted, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCompleted, OrderCancelled},
	OrderReady:     {OrderCompleted, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Message is the sentence used in customer notifications for the status.
func (s OrderStatus) Message() string {
	switch s {
	case OrderPending:
		return "Your order is pending confirmation."
	case OrderConfirmed:
		return "We have received and confirmed your order. We will start preparing it soon."
	case OrderPreparing:
		return "Your order is now being prepared by our kitchen staff."
	case OrderReady:
		return "Your order is ready for pickup."
	case OrderCompleted:
		return "Your order has been completed. Enjoy your meal!"
	case OrderCancelled:
		return "Your order has been cancelled. If you have any questions, please contact our support."
	default:
		return "Thank you for choosing Kusina De Amadeo!"
	}
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentProcessing, PaymentPaid, PaymentFailed},
	PaymentProcessing: {PaymentPaid, PaymentFailed},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, to := range paymentTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// InitialPaymentStatus is processing for electronic payments and pending for
// cash on pickup.
func InitialPaymentStatus(m PaymentMethod) PaymentStatus {
	if m == PaymentGCash {
		return PaymentProcessing
	}
	return PaymentPending
}
