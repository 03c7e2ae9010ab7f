package handler

import (
	"warkop-pos/internal/model"
	"warkop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats returns income charts, payment split and best sellers
// GET /dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetOrderReport
// GET /reports/orders?status=&period=day|month|year&date=YYYY-MM-DD&search=
func (h *DashboardHandler) GetOrderReport(c *fiber.Ctx) error {
	report, err := h.service.OrderReport(c.UserContext(), actor(c), service.ReportQuery{
		Status: model.OrderStatus(c.Query("status")),
		Period: c.Query("period"),
		Date:   c.Query("date"),
		Search: c.Query("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
