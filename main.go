package main

import (
	"log"

	"certhub/config"
	"certhub/database"
	batchRoutes "certhub/routers/batchRoutes"
	certificateRoutes "certhub/routers/certificateRoutes"
	rosterRoutes "certhub/routers/rosterRoutes"
	syncRoutes "certhub/routers/syncRoutes"
	templateRoutes "certhub/routers/templateRoutes"
	verificationRoutes "certhub/routers/verificationRoutes"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	if err := utils.ConnectStorage(); err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	fonts, err := utils.LoadFontCache(config.AppConfig.FontDir)
	if err != nil {
		log.Fatalf("Failed to load font cache: %v", err)
	}
	utils.Renderer = &utils.PDFRenderer{Fonts: fonts}
	utils.Sender = utils.SendGridSender{}

	utils.StartAuditLogger()
	utils.InitializeReconcileScheduler()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	verificationRoutes.SetupVerificationRoutes(app)
	certificateRoutes.SetupCertificateRoutes(app)
	batchRoutes.SetupBatchRoutes(app)
	templateRoutes.SetupTemplateRoutes(app)
	rosterRoutes.SetupRosterRoutes(app)
	syncRoutes.SetupSyncRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
