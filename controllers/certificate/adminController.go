package controllers

import (
	"certhub/database"
	"certhub/middleware"
	"certhub/models"
	certModels "certhub/models/certificate"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
)

// ListCertificates returns certificates filtered by status, location,
// roster or batch, newest first.
func ListCertificates(c *fiber.Ctx) error {
	db := database.Database.Db.Where("is_deleted = false")

	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	if locationID := c.QueryInt("location_id", 0); locationID > 0 {
		db = db.Where("location_id = ?", locationID)
	}
	if rosterID := c.QueryInt("roster_id", 0); rosterID > 0 {
		db = db.Where("roster_id = ?", rosterID)
	}
	if batchID := c.QueryInt("batch_id", 0); batchID > 0 {
		db = db.Where("batch_id = ?", batchID)
	}
	if !c.QueryBool("include_archived", false) {
		db = db.Where("archived = false")
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	var certs []certModels.Certificate
	if err := db.Order("created_at desc").Limit(limit).Offset((page - 1) * limit).Find(&certs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certs,
		"total":        len(certs),
		"page":         page,
	})
}

// GetCertificate returns one certificate by id.
func GetCertificate(c *fiber.Ctx) error {
	certID, err := c.ParamsInt("id")
	if err != nil || certID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate id!", nil)
	}

	var cert certModels.Certificate
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", certID).First(&cert).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", cert)
}

// RevokeCertificate marks a certificate REVOKED. Revocation is a status
// transition; the row and its document remain.
func RevokeCertificate(c *fiber.Ctx) error {
	certID, err := c.ParamsInt("id")
	if err != nil || certID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate id!", nil)
	}

	db := database.Database.Db

	var cert certModels.Certificate
	if err := db.Where("id = ? AND is_deleted = false", certID).First(&cert).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	if cert.Status == certModels.StatusRevoked {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate is already revoked!", nil)
	}

	if err := db.Model(&cert).Update("status", certModels.StatusRevoked).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to revoke certificate!", nil)
	}
	cert.Status = certModels.StatusRevoked

	utils.Audit(models.AuditCertificateRevoked, "certificate", cert.ID, map[string]interface{}{
		"code": cert.VerificationCode,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked successfully!", cert)
}

// ArchiveCertificate hides a certificate from default listings. Soft only;
// verification still resolves the code.
func ArchiveCertificate(c *fiber.Ctx) error {
	certID, err := c.ParamsInt("id")
	if err != nil || certID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate id!", nil)
	}

	db := database.Database.Db

	var cert certModels.Certificate
	if err := db.Where("id = ? AND is_deleted = false", certID).First(&cert).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	if err := db.Model(&cert).Update("archived", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to archive certificate!", nil)
	}
	cert.Archived = true

	utils.Audit(models.AuditCertificateArchived, "certificate", cert.ID, nil)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate archived successfully!", cert)
}
