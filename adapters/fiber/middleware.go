package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/tipon/core"
)

// buildRequireAuth creates a Fiber middleware that validates auth tokens
// and stores user/session data in the context for downstream handlers.
func (a *Adapter) buildRequireAuth(auth core.AuthProvider) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Extract and validate token from Authorization header
		token := extractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": core.ErrMissingAuthHeader.Error(),
			})
		}

		// Validate token and retrieve session data
		sessionData, err := auth.GetSession(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		// Store user and session in context for downstream handlers
		c.Locals("user", sessionData.User)
		c.Locals("session", sessionData.Session)

		return c.Next()
	}
}

// currentUserID returns the id of the authenticated user stored by
// buildRequireAuth, or "" when the route ran without it.
func currentUserID(c fiber.Ctx) string {
	user, ok := c.Locals("user").(*core.User)
	if !ok || user == nil {
		return ""
	}
	return user.ID
}
