package utils

import (
	"fmt"
	"log"
	"time"

	"certhub/config"
	"certhub/database"
	"certhub/models"
	certModels "certhub/models/certificate"

	"github.com/robfig/cron/v3"
)

// logReconcile logs reconcile sweep events with timestamp
func logReconcile(message string) {
	log.Printf("[RECONCILE %s] %s", time.Now().Format(time.RFC3339), message)
}

// ReconcileStuckGenerations marks certificates stuck in a non-terminal
// generation state for longer than the configured window as FAILED. The
// generation flow normally finalizes rows itself; this sweep catches rows
// orphaned by a crash between persistence steps.
func ReconcileStuckGenerations() {
	db := database.Database.Db
	cutoff := time.Now().Add(-config.AppConfig.ReconcileAfter)

	var stuck []certModels.Certificate
	if err := db.Where("generation_status IN ? AND updated_at < ? AND is_deleted = false",
		[]string{certModels.GenerationPending, certModels.GenerationDocumentUploaded}, cutoff).
		Find(&stuck).Error; err != nil {
		logReconcile("Error fetching stuck generations: " + err.Error())
		return
	}

	for _, cert := range stuck {
		previous := cert.GenerationStatus
		cert.GenerationStatus = certModels.GenerationFailed
		cert.GenerationError = fmt.Sprintf("reconciled: stuck in %s past %s", previous, config.AppConfig.ReconcileAfter)
		if err := db.Save(&cert).Error; err != nil {
			logReconcile(fmt.Sprintf("Error failing certificate %d: %v", cert.ID, err))
			continue
		}
		Audit(models.AuditReconcileSweep, "certificate", cert.ID, map[string]interface{}{
			"previous_status": previous,
		})
	}

	if len(stuck) > 0 {
		logReconcile(fmt.Sprintf("Swept %d stuck generation(s)", len(stuck)))
	}
}

// InitializeReconcileScheduler sets up the hourly reconciliation sweep
func InitializeReconcileScheduler() *cron.Cron {
	logReconcile("Initializing reconcile scheduler...")

	c := cron.New()

	// Run hourly; the staleness window itself comes from config
	c.AddFunc("0 * * * *", func() {
		ReconcileStuckGenerations()
	})

	c.Start()
	logReconcile("Reconcile scheduler started - runs hourly")
	return c
}
