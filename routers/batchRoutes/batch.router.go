package batchRoutes

import (
	controllers "certhub/controllers/certificate"
	"certhub/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupBatchRoutes sets up batch operation polling routes
func SetupBatchRoutes(app *fiber.App) {
	batchGroup := app.Group("/batches", middleware.JWTMiddleware, middleware.RequireAdmin())

	batchGroup.Get("/", controllers.ListBatchOperations)
	batchGroup.Get("/:id", controllers.GetBatchOperation)
}
