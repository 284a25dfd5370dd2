package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/tipon/core"
)

// eventBody is the request payload for event create and update.
type eventBody struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// handleSignUp returns a handler for the sign-up endpoint
func handleSignUp(auth core.AuthProvider) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.SignUpInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		ipAddress := c.IP()
		userAgent := c.Get(fiber.HeaderUserAgent)

		result, err := auth.SignUp(input, ipAddress, userAgent)
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusCreated).JSON(result)
	}
}

// handleSignIn returns a handler for the sign-in endpoint
func handleSignIn(auth core.AuthProvider) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.SignInInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		ipAddress := c.IP()
		userAgent := c.Get(fiber.HeaderUserAgent)

		result, err := auth.SignIn(input, ipAddress, userAgent)
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusOK).JSON(result)
	}
}

// handleSignOut returns a handler for the sign-out endpoint
func handleSignOut(auth core.AuthProvider) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing token",
			})
		}

		if err := auth.SignOut(token); err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message": "signed out successfully",
		})
	}
}

// handleGetSession returns a handler for the get-session endpoint
func handleGetSession(auth core.AuthProvider) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing token",
			})
		}

		session, err := auth.GetSession(token)
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusOK).JSON(session)
	}
}

// handleListEvents returns the projection for the authenticated user.
func handleListEvents(events core.EventService) fiber.Handler {
	return func(c fiber.Ctx) error {
		projected, err := events.ListEvents(currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusOK).JSON(projected)
	}
}

// handleCreateEvent creates an event owned by the authenticated user.
func handleCreateEvent(events core.EventService) fiber.Handler {
	return func(c fiber.Ctx) error {
		var body eventBody
		if err := c.Bind().Body(&body); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		id, err := events.CreateEvent(body.Name, body.Date, currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
	}
}

// handleUpdateEvent updates an event's name and date.
func handleUpdateEvent(events core.EventService) fiber.Handler {
	return func(c fiber.Ctx) error {
		var body eventBody
		if err := c.Bind().Body(&body); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		if err := events.UpdateEvent(c.Params("id"), body.Name, body.Date); err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{"id": c.Params("id")})
	}
}

// handleDeleteEvent deletes an event. Deleting an absent event succeeds.
func handleDeleteEvent(events core.EventService) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := events.DeleteEvent(c.Params("id")); err != nil {
			return respondError(c, err)
		}

		return c.SendStatus(http.StatusNoContent)
	}
}

// handleToggleFavorite flips the authenticated user's mark on an event.
func handleToggleFavorite(events core.EventService) fiber.Handler {
	return func(c fiber.Ctx) error {
		favorited, err := events.ToggleFavorite(c.Params("id"), currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{"favorite": favorited})
	}
}

// extractToken extracts the authentication token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx) string {
	// Try Bearer token first
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}

	// Fall back to cookie
	return c.Cookies("auth_token")
}

// respondError maps service errors to appropriate HTTP responses
func respondError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps service error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrNoActiveSession):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrEventNameRequired),
		errors.Is(err, core.ErrEventDateRequired),
		errors.Is(err, core.ErrInvalidEventDate):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrEventNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrUserExists):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
