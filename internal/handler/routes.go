package handler

import (
	"warkop-pos/internal/auth"
	"warkop-pos/internal/middleware"
	"warkop-pos/internal/repository"
	"warkop-pos/internal/ws"
	"warkop-pos/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Products  *ProductHandler
	Orders    *OrderHandler
	Customers *CustomerHandler
	Webhooks  *WebhookHandler
	Dashboard *DashboardHandler
}

type RouteDeps struct {
	Tokens   *jwt.Manager
	UserRepo repository.UserRepository
	Hub      *ws.Hub
}

func Register(app *fiber.App, h Handlers, d RouteDeps) {
	requireStaff := middleware.RequireAuth(d.Tokens, d.UserRepo)
	ownerOnly := middleware.RequireRole(auth.RoleOwner)

	// ============ PUBLIC ROUTES ============
	app.Post("/auth/login", h.Auth.Login)
	app.Post("/auth/validate-token", h.Auth.ValidateToken)
	app.Post("/auth/reset-password", requireStaff, h.Auth.ChangePassword)

	// Gateway callbacks carry no session; the signature is checked in the service
	app.Post("/midtrans-webhook", h.Webhooks.Midtrans)

	// ============ CUSTOMER ROUTES ============
	app.Post("/customer/login", h.Customers.Login)
	app.Post("/customer/logout", h.Customers.Logout)
	app.Post("/customer/otp-verify", middleware.RequireCustomer(d.Tokens, false), h.Customers.VerifyOTP)

	verified := middleware.RequireCustomer(d.Tokens, true)
	app.Get("/customer/menu", verified, h.Customers.Menu)
	app.Post("/customer/order/checkout", verified, h.Customers.Checkout)
	app.Get("/customer/order/history", verified, h.Customers.History)
	app.Get("/customer/order/history/:id", verified, h.Customers.HistoryDetail)
	app.Post("/customer/profile/update-name", verified, h.Customers.UpdateName)

	// ============ STAFF ROUTES ============
	app.Post("/order/create", requireStaff, h.Orders.CreateOrder)
	app.Get("/order-list", requireStaff, h.Orders.ListOrders)
	app.Post("/order/complete", requireStaff, h.Orders.CompleteOrder)
	app.Post("/order/:id/confirm-cash", requireStaff, h.Orders.ConfirmCash)

	app.Get("/checkout/:id", requireStaff, h.Orders.Checkout)
	app.Post("/checkout/:id/pay-cash", requireStaff, h.Orders.PayCash)
	app.Get("/checkout/:id/midtrans-token", requireStaff, h.Orders.MidtransToken)

	app.Get("/products", requireStaff, h.Products.GetProducts)
	app.Post("/products", requireStaff, h.Products.CreateProduct)
	app.Put("/products/:id", requireStaff, h.Products.UpdateProduct)
	app.Delete("/products/:id", requireStaff, h.Products.DeleteProduct)

	app.Get("/tables", requireStaff, h.Products.GetTables)
	app.Post("/tables", requireStaff, h.Products.CreateTable)

	app.Get("/dashboard/stats", requireStaff, h.Dashboard.GetDashboardStats)
	app.Get("/reports/orders", requireStaff, h.Dashboard.GetOrderReport)

	app.Get("/users", requireStaff, ownerOnly, h.Users.GetUsers)
	app.Post("/users", requireStaff, ownerOnly, h.Users.CreateUser)
	app.Put("/users/:id", requireStaff, ownerOnly, h.Users.UpdateUser)

	// WebSocket Route
	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(d.Hub.Serve))
	}
}
