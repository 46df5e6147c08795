package controllers

import (
	"fmt"
	"log"

	"certhub/config"
	"certhub/database"
	"certhub/middleware"
	certModels "certhub/models/certificate"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
)

// SendCertificateEmailHandler sends (or resends) the certificate email for
// one certificate. No retry on this path; errors surface to the caller.
func SendCertificateEmailHandler(c *fiber.Ctx) error {
	certID, err := c.ParamsInt("id")
	if err != nil || certID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate id!", nil)
	}

	db := database.Database.Db

	var cert certModels.Certificate
	if err := db.Where("id = ? AND is_deleted = false", certID).First(&cert).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	if cert.GenerationStatus != certModels.GenerationCompleted {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate generation is not complete!", nil)
	}

	if err := utils.SendCertificateEmail(db, &cert); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send email: "+err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate email sent successfully!", cert)
}

// BulkEmailRequest is the payload for a bulk email run.
type BulkEmailRequest struct {
	BatchName      string `json:"batch_name"`
	CertificateIDs []uint `json:"certificate_ids"`
}

// BulkEmailHandler dispatches certificate emails for many certificates
// under one batch operation. The email path retries each item with
// exponential backoff and pauses between chunks.
func BulkEmailHandler(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedBulkEmail").(*BulkEmailRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var certs []certModels.Certificate
	if err := db.Where("id IN ? AND is_deleted = false", req.CertificateIDs).Find(&certs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}
	if len(certs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No certificates found for the given ids!", nil)
	}

	op, err := utils.CreateBatchOperation(req.BatchName, len(certs))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create batch operation!", nil)
	}

	items := make([]utils.BatchItem, len(certs))
	for i, cert := range certs {
		cert := cert
		items[i] = utils.BatchItem{
			Key: fmt.Sprintf("certificate-%d", cert.ID),
			Run: func() error {
				return utils.SendCertificateEmail(db, &cert)
			},
		}
	}

	go func() {
		if _, err := utils.RunBatchOperation(op, items, utils.BatchOptions{
			ChunkSize:   config.AppConfig.BatchChunkSize,
			ChunkDelay:  config.AppConfig.EmailChunkDelay,
			MaxRetries:  config.AppConfig.MaxEmailRetries,
			BackoffBase: config.AppConfig.BackoffBase,
		}); err != nil {
			log.Printf("[BATCH] Bulk email %s orchestration error: %v", op.BatchUID, err)
		}
	}()

	return middleware.JsonResponse(c, fiber.StatusAccepted, true, "Bulk email dispatch started!", op)
}
