package syncRoutes

import (
	controllers "certhub/controllers/sync"
	"certhub/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupSyncRoutes sets up learning-platform sync routes
func SetupSyncRoutes(app *fiber.App) {
	syncGroup := app.Group("/sync", middleware.JWTMiddleware, middleware.RequireAdmin())

	syncGroup.Post("/enrollments", controllers.TriggerEnrollmentSync)
}
