package certificateRoutes

import (
	controllers "certhub/controllers/certificate"
	"certhub/middleware"
	validators "certhub/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

// SetupCertificateRoutes sets up the admin certificate routes
func SetupCertificateRoutes(app *fiber.App) {
	certGroup := app.Group("/certificates", middleware.JWTMiddleware, middleware.RequireAdmin())

	// Issuance
	certGroup.Post("/", validators.GenerateCertificate(), controllers.GenerateCertificateHandler)
	certGroup.Post("/bulk", validators.BulkGenerate(), controllers.BulkGenerateHandler)

	// Email dispatch
	certGroup.Post("/:id/email", controllers.SendCertificateEmailHandler)
	certGroup.Post("/email/bulk", validators.BulkEmail(), controllers.BulkEmailHandler)

	// Listing and administration
	certGroup.Get("/", controllers.ListCertificates)
	certGroup.Get("/:id", controllers.GetCertificate)
	certGroup.Post("/:id/revoke", controllers.RevokeCertificate)
	certGroup.Post("/:id/archive", controllers.ArchiveCertificate)

	// Roster-wide generation
	rosterGroup := app.Group("/rosters", middleware.JWTMiddleware, middleware.RequireAdmin())
	rosterGroup.Post("/:id/generate", validators.RosterGenerate(), controllers.RosterGenerateHandler)
}
