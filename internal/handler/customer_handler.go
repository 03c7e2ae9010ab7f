package handler

import (
	"errors"
	"strings"
	"time"

	"warkop-pos/internal/gateway"
	"warkop-pos/internal/middleware"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"
	"warkop-pos/internal/service"
	"warkop-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	otp      service.OTPService
	orders   service.OrderService
	payments service.PaymentService
	products service.ProductService
	tables   service.TableService
	tokens   *jwt.Manager
	ttl      time.Duration
}

func NewCustomerHandler(otp service.OTPService, orders service.OrderService, payments service.PaymentService, products service.ProductService, tables service.TableService, tokens *jwt.Manager, ttl time.Duration) *CustomerHandler {
	return &CustomerHandler{
		otp:      otp,
		orders:   orders,
		payments: payments,
		products: products,
		tables:   tables,
		tokens:   tokens,
		ttl:      ttl,
	}
}

func (h *CustomerHandler) issue(c *fiber.Ctx, sessionToken, name, phone string, verified bool) (string, error) {
	token, err := h.tokens.GenerateCustomerToken(sessionToken, name, phone, verified)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CustomerCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.ttl),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return token, nil
}

// Login starts an OTP session
// POST /customer/login
func (h *CustomerHandler) Login(c *fiber.Ctx) error {
	var req service.RequestCodeInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	session, err := h.otp.RequestCode(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	token, err := h.issue(c, session.SessionToken, strings.TrimSpace(req.Name), session.PhoneNumber, false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"token":      token,
		"expires_at": session.ExpiresAt,
	})
}

type VerifyOTPRequest struct {
	Code string `json:"code"`
}

// VerifyOTP
// POST /customer/otp-verify
func (h *CustomerHandler) VerifyOTP(c *fiber.Ctx) error {
	claims, ok := middleware.CustomerClaimsFrom(c)
	if !ok {
		return respondError(c, service.ErrSessionNotFound)
	}

	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "code is required", "reason": "validation"})
	}

	session, err := h.otp.Verify(c.UserContext(), claims.SessionToken, req.Code)
	if err != nil {
		return respondError(c, err)
	}

	token, err := h.issue(c, session.SessionToken, claims.Name, session.PhoneNumber, true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": token})
}

// Menu
// GET /customer/menu
func (h *CustomerHandler) Menu(c *fiber.Ctx) error {
	catalog, err := h.products.List(c.UserContext(), repository.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	tables, err := h.tables.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"products":   catalog.Products,
		"categories": catalog.Categories,
		"tables":     tables,
	})
}

type CustomerCheckoutRequest struct {
	service.CreateOrderInput
	Takeaway bool `json:"takeaway"`
}

// Checkout places a qr_scan order and, for gateway methods, returns a Snap token.
// POST /customer/order/checkout
func (h *CustomerHandler) Checkout(c *fiber.Ctx) error {
	var req CustomerCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	in := req.CreateOrderInput
	if req.Takeaway {
		in.TableID = nil
		in.TableNumber = ""
	}

	order, err := h.orders.CreateOrder(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"success":        true,
		"order_id":       order.ID,
		"total_price":    order.TotalPrice,
		"payment_method": order.PaymentMethod,
	}
	if !order.PaymentMethod.IsGateway() {
		return c.Status(201).JSON(resp)
	}

	token, err := h.payments.InitiateCheckout(c.UserContext(), order)
	if err != nil {
		var gerr *gateway.Error
		if errors.As(err, &gerr) {
			// The order stands; the customer can retry payment from history.
			return c.Status(400).JSON(fiber.Map{"success": false, "error": gerr.Message(), "order_id": order.ID})
		}
		return respondError(c, err)
	}
	resp["token"] = token
	return c.Status(201).JSON(resp)
}

// History
// GET /customer/order/history
func (h *CustomerHandler) History(c *fiber.Ctx) error {
	orders, err := h.orders.CustomerHistory(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": summaries(orders)})
}

// HistoryDetail
// GET /customer/order/history/:id
func (h *CustomerHandler) HistoryDetail(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	order, err := h.orders.CustomerOrder(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": NewOrderDetail(order)})
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

// UpdateName re-issues the session with a new display name
// POST /customer/profile/update-name
func (h *CustomerHandler) UpdateName(c *fiber.Ctx) error {
	claims, ok := middleware.CustomerClaimsFrom(c)
	if !ok {
		return respondError(c, service.ErrSessionNotFound)
	}

	var req UpdateNameRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "name is required", "reason": "validation"})
	}

	token, err := h.issue(c, claims.SessionToken, name, claims.Phone, claims.Verified)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": token, "name": name})
}

// Logout
// POST /customer/logout
func (h *CustomerHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.CustomerCookie)
	return c.JSON(fiber.Map{"success": true})
}

type orderSummary struct {
	ID            uint                `json:"id"`
	TotalPrice    string              `json:"total_price"`
	Status        model.OrderStatus   `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time           `json:"created_at"`
}

func summaries(orders []model.Order) []orderSummary {
	out := make([]orderSummary, len(orders))
	for i, o := range orders {
		out[i] = orderSummary{
			ID:            o.ID,
			TotalPrice:    o.TotalPrice.StringFixed(2),
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			PaymentMethod: o.PaymentMethod,
			CreatedAt:     o.CreatedAt,
		}
	}
	return out
}
