package handler

import (
	"fmt"
	"time"

	"warkop-pos/internal/model"
	"warkop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orders   service.OrderService
	payments service.PaymentService
}

func NewOrderHandler(orders service.OrderService, payments service.PaymentService) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments}
}

type OrderItem struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderDetail is the cashier-screen view of an order.
type OrderDetail struct {
	ID            uint                `json:"id"`
	CustomerName  string              `json:"customer_name"`
	PhoneNumber   string              `json:"phone_number,omitempty"`
	Table         string              `json:"table"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Status        model.OrderStatus   `json:"status"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Source        model.OrderSource   `json:"source"`
	Kasir         string              `json:"kasir,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Items         []OrderItem         `json:"items"`
	ByKasir       bool                `json:"by_kasir"`
	IsPaid        bool                `json:"is_paid"`
	CreatedAt     time.Time           `json:"created_at"`
}

func NewOrderDetail(o *model.Order) OrderDetail {
	d := OrderDetail{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		PhoneNumber:   o.PhoneNumber,
		Table:         o.TableLabel(),
		TotalPrice:    o.TotalPrice,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Source:        o.Source,
		Notes:         o.Notes,
		Items:         make([]OrderItem, 0, len(o.Lines)),
		ByKasir:       o.Source == model.SourceCounter,
		IsPaid:        o.IsPaid(),
		CreatedAt:     o.CreatedAt,
	}
	if o.Kasir != nil {
		d.Kasir = o.Kasir.DisplayName()
	}
	for _, l := range o.Lines {
		d.Items = append(d.Items, OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal(),
		})
	}
	return d
}

func details(orders []model.Order) []OrderDetail {
	out := make([]OrderDetail, len(orders))
	for i := range orders {
		out[i] = NewOrderDetail(&orders[i])
	}
	return out
}

// CreateOrder places a counter order
// POST /order/create
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.orders.CreateOrder(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"order_id": order.ID,
		"redirect": fmt.Sprintf("/checkout/%d", order.ID),
	})
}

// ListOrders returns Processing orders, or one order when order_id is given
// GET /order-list
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	if raw := c.Query("order_id"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			return badID(c)
		}
		order, err := h.orders.GetOrder(c.UserContext(), actor(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "order": NewOrderDetail(order)})
	}

	orders, err := h.orders.ListProcessing(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": details(orders)})
}

type CompleteOrderRequest struct {
	OrderID uint `json:"order_id"`
}

// CompleteOrder
// POST /order/complete
func (h *OrderHandler) CompleteOrder(c *fiber.Ctx) error {
	var req CompleteOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.OrderID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "order_id is required", "reason": "validation"})
	}

	order, err := h.orders.CompleteOrder(c.UserContext(), actor(c), req.OrderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order_id": order.ID, "status": order.Status})
}

type ConfirmCashRequest struct {
	Reconfirm bool `json:"reconfirm"`
}

// ConfirmCash confirms cash for a customer-placed order
// POST /order/:id/confirm-cash
func (h *OrderHandler) ConfirmCash(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return badID(c)
	}

	var req ConfirmCashRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidJSON(c)
		}
	}
	return h.confirmCash(c, id, req.Reconfirm)
}

// PayCash is the checkout-screen entry; the cashier at the screen takes the money
// POST /checkout/:id/pay-cash
func (h *OrderHandler) PayCash(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	return h.confirmCash(c, id, true)
}

func (h *OrderHandler) confirmCash(c *fiber.Ctx, id uint, reconfirm bool) error {
	order, err := h.orders.ConfirmCashPayment(c.UserContext(), actor(c), id, reconfirm)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
	})
}

// Checkout shows an order for payment
// GET /checkout/:id
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	order, err := h.orders.GetOrder(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": NewOrderDetail(order)})
}

// MidtransToken
// GET /checkout/:id/midtrans-token
func (h *OrderHandler) MidtransToken(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	token, err := h.payments.CheckoutToken(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": token})
}
