package templateRoutes

import (
	controllers "certhub/controllers/template"
	"certhub/middleware"
	validators "certhub/validators/template"

	"github.com/gofiber/fiber/v2"
)

// SetupTemplateRoutes sets up certificate and email template management routes
func SetupTemplateRoutes(app *fiber.App) {
	tplGroup := app.Group("/templates", middleware.JWTMiddleware, middleware.RequireAdmin())

	tplGroup.Get("/", controllers.ListTemplates)
	tplGroup.Post("/", validators.Template(), controllers.CreateTemplate)
	tplGroup.Put("/:id", validators.Template(), controllers.UpdateTemplate)
	tplGroup.Delete("/:id", controllers.DeleteTemplate)

	emailGroup := app.Group("/email-templates", middleware.JWTMiddleware, middleware.RequireAdmin())

	emailGroup.Get("/", controllers.ListEmailTemplates)
	emailGroup.Post("/", validators.EmailTemplate(), controllers.CreateEmailTemplate)
	emailGroup.Put("/:id", validators.EmailTemplate(), controllers.UpdateEmailTemplate)
	emailGroup.Delete("/:id", controllers.DeleteEmailTemplate)
}
