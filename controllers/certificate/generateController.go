package controllers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"certhub/config"
	"certhub/database"
	"certhub/middleware"
	"certhub/models"
	certModels "certhub/models/certificate"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
)

// GenerationRequest is the ephemeral input for one certificate generation.
type GenerationRequest struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	CourseName     string `json:"course_name"`
	InstructorName string `json:"instructor_name"`
	IssueDate      string `json:"issue_date"`
	ExpiryDate     string `json:"expiry_date"`
	TemplateID     *uint  `json:"template_id"`
	LocationID     *uint  `json:"location_id"`
	RosterID       *uint  `json:"roster_id"`
	SendEmail      bool   `json:"send_email"`
}

// codeInsertAttempts bounds the insert-retry loop that hides verification
// code collisions behind the unique constraint.
const codeInsertAttempts = 3

// GenerateCertificate runs the full generation workflow for one request:
// resolve template, render the document, persist the row through its
// lifecycle (PENDING -> DOCUMENT_UPLOADED -> COMPLETED), and optionally
// email the recipient. On a failure after the row exists, the row is marked
// FAILED with the error recorded; it is never left ambiguous.
func GenerateCertificate(req GenerationRequest, batchID *uint) (*certModels.Certificate, error) {
	db := database.Database.Db

	issueDate, err := utils.ParseCertificateDate(req.IssueDate)
	if err != nil {
		return nil, err
	}
	expiryDate, err := utils.ParseCertificateDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	tpl, err := utils.ResolveCertificateTemplate(db, req.TemplateID, req.LocationID)
	if err != nil {
		return nil, err
	}

	layout, err := utils.ParseFieldLayout(tpl.FieldLayout)
	if err != nil {
		return nil, err
	}

	asset, err := utils.Store.Get(context.Background(), tpl.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("fetch template asset: %w", err)
	}

	pdfBytes, err := utils.Renderer.Render(asset, utils.CertificateFields{
		Name:       req.RecipientName,
		Course:     req.CourseName,
		IssueDate:  certModels.DisplayDate(issueDate),
		ExpiryDate: certModels.DisplayDate(expiryDate),
	}, layout)
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}

	// Insert the PENDING row, retrying on a verification code collision
	cert := certModels.Certificate{
		RecipientName:    req.RecipientName,
		RecipientEmail:   req.RecipientEmail,
		CourseName:       req.CourseName,
		InstructorName:   req.InstructorName,
		IssueDate:        issueDate,
		ExpiryDate:       expiryDate,
		LocationID:       req.LocationID,
		RosterID:         req.RosterID,
		BatchID:          batchID,
		Status:           certModels.StatusActive,
		GenerationStatus: certModels.GenerationPending,
	}
	for attempt := 0; ; attempt++ {
		cert.VerificationCode = utils.GenerateVerificationCode()
		err = db.Create(&cert).Error
		if err == nil {
			break
		}
		if !isDuplicateCodeErr(err) || attempt >= codeInsertAttempts-1 {
			return nil, fmt.Errorf("create certificate: %w", err)
		}
		log.Printf("[GENERATE] Verification code collision, regenerating (attempt %d)", attempt+1)
	}

	// From here on, any failure finalizes the row as FAILED
	key := utils.DocumentKey(cert.ID)
	if err := utils.Store.Put(context.Background(), key, pdfBytes, "application/pdf"); err != nil {
		return nil, failGeneration(&cert, fmt.Errorf("upload document: %w", err))
	}

	if err := db.Model(&cert).Update("generation_status", certModels.GenerationDocumentUploaded).Error; err != nil {
		return nil, failGeneration(&cert, fmt.Errorf("mark document uploaded: %w", err))
	}
	cert.GenerationStatus = certModels.GenerationDocumentUploaded

	url := utils.Store.PublicURL(key)
	if err := db.Model(&cert).Updates(map[string]interface{}{
		"certificate_url":   url,
		"generation_status": certModels.GenerationCompleted,
	}).Error; err != nil {
		return nil, failGeneration(&cert, fmt.Errorf("finalize certificate: %w", err))
	}
	cert.CertificateURL = url
	cert.GenerationStatus = certModels.GenerationCompleted

	utils.Audit(models.AuditCertificateGenerated, "certificate", cert.ID, map[string]interface{}{
		"recipient": cert.RecipientName,
		"course":    cert.CourseName,
		"code":      cert.VerificationCode,
	})

	if req.SendEmail && cert.RecipientEmail != "" {
		if err := utils.SendCertificateEmail(db, &cert); err != nil {
			// Generation itself succeeded; surface the email failure
			return &cert, fmt.Errorf("certificate generated but email failed: %w", err)
		}
	}

	return &cert, nil
}

// failGeneration marks the row FAILED with the cause, audits, and returns
// the original error for the caller.
func failGeneration(cert *certModels.Certificate, cause error) error {
	cert.GenerationStatus = certModels.GenerationFailed
	cert.GenerationError = cause.Error()
	if err := database.Database.Db.Model(cert).Updates(map[string]interface{}{
		"generation_status": certModels.GenerationFailed,
		"generation_error":  cause.Error(),
	}).Error; err != nil {
		log.Printf("[GENERATE] Failed to mark certificate %d FAILED: %v", cert.ID, err)
	}
	utils.Audit(models.AuditCertificateFailed, "certificate", cert.ID, map[string]interface{}{
		"error": cause.Error(),
	})
	return cause
}

func isDuplicateCodeErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// GenerateCertificateHandler issues a single certificate
func GenerateCertificateHandler(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedGeneration").(*GenerationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	cert, err := GenerateCertificate(*req, nil)
	if err != nil {
		if cert != nil {
			// Generated but email failed
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate generated, but email delivery failed!", fiber.Map{
				"certificate": cert,
				"email_error": err.Error(),
			})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate certificate: "+err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate generated successfully!", cert)
}

// BulkGenerateHandler issues many certificates under one batch operation.
// The batch runs in the background; the response carries the tracking row.
func BulkGenerateHandler(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedBulkGeneration").(*BulkGenerationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	op, err := utils.CreateBatchOperation(req.BatchName, len(req.Certificates))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create batch operation!", nil)
	}

	items := bulkGenerationItems(req.Certificates, &op.ID)

	// Generation path: no inter-chunk delay, no retry
	go func() {
		if _, err := utils.RunBatchOperation(op, items, utils.BatchOptions{
			ChunkSize: config.AppConfig.BatchChunkSize,
		}); err != nil {
			log.Printf("[BATCH] Bulk generation %s orchestration error: %v", op.BatchUID, err)
		}
	}()

	return middleware.JsonResponse(c, fiber.StatusAccepted, true, "Bulk generation started!", op)
}

// bulkGenerationItems builds the batch work list. Keys carry the item index
// so two requests for the same recipient never share an error-map slot.
func bulkGenerationItems(requests []GenerationRequest, batchID *uint) []utils.BatchItem {
	items := make([]utils.BatchItem, len(requests))
	for i, genReq := range requests {
		genReq := genReq
		items[i] = utils.BatchItem{
			Key: fmt.Sprintf("certificates[%d] %s", i, genReq.RecipientName),
			Run: func() error {
				_, err := GenerateCertificate(genReq, batchID)
				return err
			},
		}
	}
	return items
}

// BulkGenerationRequest is the payload for a bulk generation run.
type BulkGenerationRequest struct {
	BatchName    string              `json:"batch_name"`
	Certificates []GenerationRequest `json:"certificates"`
}

// RosterGenerateHandler issues one certificate per completed roster member.
func RosterGenerateHandler(c *fiber.Ctx) error {
	rosterID, err := c.ParamsInt("id")
	if err != nil || rosterID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid roster id!", nil)
	}

	db := database.Database.Db

	var roster certModels.Roster
	if err := db.Where("id = ? AND is_deleted = false", rosterID).First(&roster).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Roster not found!", nil)
	}

	var members []certModels.RosterMember
	if err := db.Where("roster_id = ? AND completed = true AND is_deleted = false", roster.ID).Find(&members).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch roster members!", nil)
	}
	if len(members) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No completed members on this roster!", nil)
	}

	reqData, _ := c.Locals("validatedRosterGeneration").(*RosterGenerationRequest)
	if reqData == nil {
		reqData = &RosterGenerationRequest{}
	}

	op, err := utils.CreateBatchOperation(roster.Name, len(members))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create batch operation!", nil)
	}

	rosterIDVal := roster.ID
	items := make([]utils.BatchItem, len(members))
	for i, member := range members {
		member := member
		items[i] = utils.BatchItem{
			Key: fmt.Sprintf("member[%d] %s", member.ID, member.Name),
			Run: func() error {
				_, err := GenerateCertificate(GenerationRequest{
					RecipientName:  member.Name,
					RecipientEmail: member.Email,
					CourseName:     roster.CourseName,
					IssueDate:      reqData.IssueDate,
					ExpiryDate:     reqData.ExpiryDate,
					TemplateID:     reqData.TemplateID,
					LocationID:     roster.LocationID,
					RosterID:       &rosterIDVal,
					SendEmail:      reqData.SendEmail,
				}, &op.ID)
				return err
			},
		}
	}

	go func() {
		if _, err := utils.RunBatchOperation(op, items, utils.BatchOptions{
			ChunkSize: config.AppConfig.BatchChunkSize,
		}); err != nil {
			log.Printf("[BATCH] Roster generation %s orchestration error: %v", op.BatchUID, err)
		}
	}()

	return middleware.JsonResponse(c, fiber.StatusAccepted, true, "Roster generation started!", op)
}

// RosterGenerationRequest carries the shared fields for a roster-wide run.
type RosterGenerationRequest struct {
	IssueDate  string `json:"issue_date"`
	ExpiryDate string `json:"expiry_date"`
	TemplateID *uint  `json:"template_id"`
	SendEmail  bool   `json:"send_email"`
}
