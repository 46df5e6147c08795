package controllers

import (
	"errors"
	"time"

	"certhub/database"
	"certhub/middleware"
	"certhub/models"
	certModels "certhub/models/certificate"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// VerificationResult is the structured outcome of a code lookup. Ephemeral;
// computed per request, never persisted.
type VerificationResult struct {
	Valid       bool                    `json:"valid"`
	Status      string                  `json:"status"`
	Certificate *certModels.Certificate `json:"certificate"`
	Location    *models.Location        `json:"location,omitempty"`
}

// VerifyCode normalizes a submitted code and derives the certificate's
// effective status. It always returns a structured result: internal errors
// collapse to status ERROR rather than propagating.
func VerifyCode(db *gorm.DB, rawCode string) VerificationResult {
	code := utils.NormalizeVerificationCode(rawCode)

	// Format check happens before any store access
	if len(code) != 10 {
		return VerificationResult{Valid: false, Status: certModels.VerifyInvalidFormat}
	}

	var cert certModels.Certificate
	err := db.Where("verification_code = ? AND is_deleted = false", code).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VerificationResult{Valid: false, Status: certModels.VerifyNotFound}
		}
		return VerificationResult{Valid: false, Status: certModels.VerifyError}
	}

	var location *models.Location
	if cert.LocationID != nil {
		var loc models.Location
		if err := db.Where("id = ? AND is_deleted = false", *cert.LocationID).First(&loc).Error; err == nil {
			location = &loc
		}
	}

	// Effective status: stored REVOKED wins over everything, then expiry
	// measured against wall-clock time, then VALID.
	status := certModels.VerifyValid
	switch {
	case cert.Status == certModels.StatusRevoked:
		status = certModels.VerifyRevoked
	case cert.ExpiryDate.Before(time.Now()):
		status = certModels.VerifyExpired
	}

	valid := status == certModels.VerifyValid || status == certModels.VerifyActive
	return VerificationResult{Valid: valid, Status: status, Certificate: &cert, Location: location}
}

// VerifyCertificateHandler is the public, unauthenticated verification
// endpoint. Always 200 with a structured result.
func VerifyCertificateHandler(c *fiber.Ctx) error {
	code := c.Params("code")
	result := VerifyCode(database.Database.Db, code)

	var entityID uint
	if result.Certificate != nil {
		entityID = result.Certificate.ID
	}
	utils.Audit(models.AuditCertificateVerified, "certificate", entityID, map[string]interface{}{
		"code":   utils.NormalizeVerificationCode(code),
		"status": result.Status,
		"valid":  result.Valid,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification completed.", result)
}
