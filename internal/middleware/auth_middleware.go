package middleware

import (
	"strings"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/repository"
	"warkop-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const (
	actorKey         = "actor"
	customerClaimKey = "customer_claims"

	// CustomerCookie holds the signed customer session.
	CustomerCookie = "customer_token"
)

func bearer(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth validates a staff JWT, checks the single-session token version and puts
// an auth.Actor in the context.
func RequireAuth(tokens *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearer(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		c.Locals(actorKey, auth.Staff(user.Role, user.ID, user.DisplayName()))
		return c.Next()
	}
}

// RequireRole checks the actor set by RequireAuth.
func RequireRole(roles ...auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: role '" + string(actor.Role) + "' not allowed"})
	}
}

// CustomerToken reads the customer session from the cookie or, failing that, a
// Bearer header.
func CustomerToken(c *fiber.Ctx) string {
	if v := c.Cookies(CustomerCookie); v != "" {
		return v
	}
	v, _ := bearer(c)
	return v
}

// RequireCustomer accepts a signed customer session. With verified set, only sessions
// that passed the OTP check get through.
func RequireCustomer(tokens *jwt.Manager, verified bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokens.ValidateCustomerToken(CustomerToken(c))
		if err != nil {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "customer login required"})
		}
		if verified && !claims.Verified {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "phone number not verified"})
		}

		c.Locals(customerClaimKey, claims)
		c.Locals(actorKey, auth.Customer(claims.Name, claims.Phone))
		return c.Next()
	}
}

func ActorFrom(c *fiber.Ctx) (auth.Actor, bool) {
	actor, ok := c.Locals(actorKey).(auth.Actor)
	return actor, ok
}

func CustomerClaimsFrom(c *fiber.Ctx) (*jwt.CustomerClaims, bool) {
	claims, ok := c.Locals(customerClaimKey).(*jwt.CustomerClaims)
	return claims, ok
}
