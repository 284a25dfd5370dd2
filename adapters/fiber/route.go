// Package fiber adapts the HTTP surface onto a gofiber/v3 application.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/tipon/core"
)

type Adapter struct {
	app *fiber.App
}

var _ core.HTTPProvider = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

func (a *Adapter) RegisterRoutes(auth core.AuthProvider, events core.EventService, basePath string) error {
	api := a.app.Group(basePath)

	// Public routes
	api.Post("/sign-up", handleSignUp(auth))
	api.Post("/sign-in", handleSignIn(auth))

	// Protected routes
	requireAuth := a.buildRequireAuth(auth)
	api.Post("/sign-out", handleSignOut(auth), requireAuth)
	api.Get("/session", handleGetSession(auth), requireAuth)

	api.Get("/events", handleListEvents(events), requireAuth)
	api.Post("/events", handleCreateEvent(events), requireAuth)
	api.Put("/events/:id", handleUpdateEvent(events), requireAuth)
	api.Delete("/events/:id", handleDeleteEvent(events), requireAuth)
	api.Post("/events/:id/favorite", handleToggleFavorite(events), requireAuth)

	return nil
}
