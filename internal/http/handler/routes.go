package handler

import (
	"github.com/gofiber/fiber/v2"

	"docgate/internal/service"
)

// RegisterRoutes attaches the public and authenticated API routes to app.
// authn guards every /api route except /api/health.
func RegisterRoutes(app *fiber.App, store Pinger, docSvc service.DocumentService, authn fiber.Handler) {
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/health", HealthCheck(store))

	api.Get("/items", authn, LegacyItems())

	docs := api.Group("/documents", authn)
	docs.Get("/", ListDocuments(docSvc))
	docs.Post("/", CreateDocument(docSvc))
	// Fixed segments before /:id so they are not captured as ids.
	docs.Get("/search", SearchDocuments(docSvc))
	docs.Get("/stats", DocumentStats(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Put("/:id", UpdateDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
}
