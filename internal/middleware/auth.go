package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/flashpizza/internal/utils"
)

const (
	adminContextKey   = "adminTokenID"
	sessionContextKey = "sessionID"

	// SessionHeader carries the customer session id.
	SessionHeader = "X-Session-ID"
)

// AdminOnly validates the admin JWT and loads its token id into context.
func AdminOnly(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenID, err := utils.ParseAdminToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(adminContextKey, tokenID)
		return c.Next()
	}
}

// GetAdminTokenID extracts the authenticated admin token id from context.
func GetAdminTokenID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(adminContextKey).(string)
	return id, ok && id != ""
}

// RequireSession loads the customer session id from the X-Session-ID header.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(SessionHeader))
		if id == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing "+SessionHeader+" header")
		}
		c.Locals(sessionContextKey, id)
		return c.Next()
	}
}

// GetSessionID returns the session id loaded by RequireSession.
func GetSessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionContextKey).(string)
	return id
}
