package api

import (
	"context"
	"github.com/labstack/echo/v4"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
	"kusina-service/internal/service"
	"net/http"
)

type OrderService interface {
	CreateOrder(ctx context.Context, p auth.Principal, in service.CreateOrderInput) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, p auth.Principal, id string, target entity.OrderStatus) (*entity.Order, error)
	UpdatePaymentStatus(ctx context.Context, p auth.Principal, id string, target entity.PaymentStatus) (*entity.Order, error)
	InitiateGCashPayment(ctx context.Context, p auth.Principal, id string, amount float64) (*service.GCashPayment, error)
	GetOrder(ctx context.Context, p auth.Principal, id string) (*entity.Order, error)
	ListOrders(ctx context.Context, p auth.Principal, in service.ListOrdersInput) (*service.OrderPage, error)
	Stats(ctx context.Context, p auth.Principal) (*entity.OrderStats, error)
}

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type orderStatusRequest struct {
	OrderID string             `json:"orderId"`
	Status  entity.OrderStatus `json:"status"`
}

type paymentStatusRequest struct {
	OrderID       string               `json:"orderId"`
	PaymentStatus entity.PaymentStatus `json:"paymentStatus"`
}

type gcashRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var in service.CreateOrderInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request payload")
	}
	in.IdempotencyKey = c.Request().Header.Get("Idempotent-Key")

	createdOrder, err := h.orderService.CreateOrder(c.Request().Context(), auth.PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdOrder)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	var in service.ListOrdersInput
	err := echo.QueryParamsBinder(c).
		Int("page", &in.Page).
		Int("limit", &in.PageSize).
		String("status", &in.Status).
		String("search", &in.Search).
		BindError()
	if err != nil {
		return badRequest("invalid query parameters")
	}

	page, err := h.orderService.ListOrders(c.Request().Context(), auth.PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), auth.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request payload")
	}
	if req.OrderID == "" || req.Status == "" {
		return badRequest("orderId and status are required")
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), auth.PrincipalFrom(c), req.OrderID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdatePaymentStatus(c echo.Context) error {
	var req paymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request payload")
	}
	if req.OrderID == "" || req.PaymentStatus == "" {
		return badRequest("orderId and paymentStatus are required")
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request().Context(), auth.PrincipalFrom(c), req.OrderID, req.PaymentStatus)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Stats(c echo.Context) error {
	stats, err := h.orderService.Stats(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *OrderHandler) InitiateGCashPayment(c echo.Context) error {
	var req gcashRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request payload")
	}
	if req.OrderID == "" {
		return badRequest("orderId is required")
	}

	payment, err := h.orderService.InitiateGCashPayment(c.Request().Context(), auth.PrincipalFrom(c), req.OrderID, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}
