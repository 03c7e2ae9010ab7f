package handler

import (
	"errors"
	"log/slog"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	payments service.PaymentService
	log      *slog.Logger
}

func NewWebhookHandler(payments service.PaymentService, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{payments: payments, log: log.With("component", "webhook")}
}

// Midtrans receives gateway notifications. Only a 200 stops the provider retrying.
// POST /midtrans-webhook
func (h *WebhookHandler) Midtrans(c *fiber.Ctx) error {
	order, err := h.payments.HandleNotification(c.UserContext(), c.Body())
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "ok", "order_id": order.ID, "payment_status": order.PaymentStatus})
	case errors.Is(err, service.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": err.Error()})
	case errors.Is(err, auth.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"status": "error", "message": "invalid signature"})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"status": "not found"})
	}
	h.log.Error("webhook failed", "error", err)
	return c.Status(500).JSON(fiber.Map{"status": "error", "message": "internal error"})
}
