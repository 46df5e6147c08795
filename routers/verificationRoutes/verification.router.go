package verificationRoutes

import (
	controllers "certhub/controllers/certificate"

	"github.com/gofiber/fiber/v2"
)

// SetupVerificationRoutes sets up the public verification route. No auth:
// verification is an unauthenticated lookup by code.
func SetupVerificationRoutes(app *fiber.App) {
	app.Get("/verify/:code", controllers.VerifyCertificateHandler)
}
