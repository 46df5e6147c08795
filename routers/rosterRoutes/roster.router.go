package rosterRoutes

import (
	controllers "certhub/controllers/roster"
	"certhub/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRosterRoutes sets up roster and location management routes
func SetupRosterRoutes(app *fiber.App) {
	rosterGroup := app.Group("/rosters", middleware.JWTMiddleware, middleware.RequireAdmin())

	rosterGroup.Get("/", controllers.ListRosters)
	rosterGroup.Get("/:id", controllers.GetRoster)
	rosterGroup.Post("/", controllers.CreateRoster)

	locationGroup := app.Group("/locations", middleware.JWTMiddleware, middleware.RequireAdmin())

	locationGroup.Get("/", controllers.ListLocations)
	locationGroup.Post("/", controllers.CreateLocation)
}
