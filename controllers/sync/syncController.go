package controllers

import (
	"log"

	"certhub/config"
	"certhub/database"
	"certhub/middleware"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
)

// TriggerEnrollmentSync starts a learning-platform enrollment sync in the
// background. Scores and completion flags land on roster members; the sync
// is best-effort and page-by-page.
func TriggerEnrollmentSync(c *fiber.Ctx) error {
	if config.AppConfig.LearnAPIKey == "" || config.AppConfig.LearnSubdomain == "" {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Learning platform credentials are not configured!", nil)
	}

	go func() {
		client := utils.NewLearnClient()
		updated, err := utils.SyncEnrollments(database.Database.Db, client)
		if err != nil {
			log.Printf("[SYNC] Enrollment sync stopped after %d updates: %v", updated, err)
		}
	}()

	return middleware.JsonResponse(c, fiber.StatusAccepted, true, "Enrollment sync started!", nil)
}
