package middleware

import (
	"errors"
	"strings"

	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// RequireAuth is middleware that resolves the bearer token into a Session
// and stores it on the request for downstream handlers.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": "unauthorized", "error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": "unauthorized", "error": "Invalid authorization format. Use: Bearer <token>"})
		}

		sess, err := auth.ResolveSession(c.UserContext(), parts[1])
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": "session_expired", "error": err.Error()})
			}
			return err
		}

		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// SessionFrom returns the Session stored by RequireAuth.
func SessionFrom(c *fiber.Ctx) (service.Session, bool) {
	sess, ok := c.Locals(sessionKey).(service.Session)
	return sess, ok
}

// RequirePrivilege checks if the authenticated user's role grants the privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFrom(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"code": "forbidden", "error": "No session found"})
		}

		if sess.HasPrivilege(requiredPrivilege) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"code":  "forbidden",
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}
