package handler

import (
	"errors"
	"strconv"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/gateway"
	"warkop-pos/internal/middleware"
	"warkop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto status codes. Anything unrecognised is a 500
// with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	var gerr *gateway.Error
	switch {
	case errors.As(err, &gerr):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": gerr.Message()})
	case errors.Is(err, service.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error(), "reason": "validation"})
	case errors.Is(err, service.ErrInsufficientStock):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error(), "reason": "insufficient_stock"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error(), "reason": "invalid_transition"})
	case errors.Is(err, service.ErrOTPInvalid):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error(), "reason": "otp_invalid"})
	case errors.Is(err, service.ErrOTPExpired):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error(), "reason": "otp_expired"})
	case errors.Is(err, service.ErrUsernameExists), errors.Is(err, service.ErrWrongPassword):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, service.ErrRateLimited):
		return c.Status(429).JSON(fiber.Map{"success": false, "error": err.Error(), "reason": "rate_limited"})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.Status(403).JSON(fiber.Map{"success": false, "error": err.Error(), "reason": "login_required"})
	case errors.Is(err, auth.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.Status(500).JSON(fiber.Map{"success": false, "error": "internal server error"})
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON", "reason": "validation"})
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badID(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid id", "reason": "validation"})
}

func actor(c *fiber.Ctx) auth.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}
