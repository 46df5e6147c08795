package controllers

import (
	"certhub/database"
	"certhub/middleware"
	certModels "certhub/models/certificate"

	"github.com/gofiber/fiber/v2"
)

// EmailTemplateRequest is the payload for creating/updating an email template.
type EmailTemplateRequest struct {
	Name       string `json:"name"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	LocationID *uint  `json:"location_id"`
	IsDefault  bool   `json:"is_default"`
}

// CreateEmailTemplate creates an email template row.
func CreateEmailTemplate(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEmailTemplate").(*EmailTemplateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tpl := certModels.EmailTemplate{
		Name:       reqData.Name,
		Subject:    reqData.Subject,
		Body:       reqData.Body,
		LocationID: reqData.LocationID,
		IsDefault:  reqData.IsDefault,
	}

	if err := database.Database.Db.Create(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create email template!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Email template created successfully!", tpl)
}

// ListEmailTemplates returns all email templates.
func ListEmailTemplates(c *fiber.Ctx) error {
	var templates []certModels.EmailTemplate
	if err := database.Database.Db.Where("is_deleted = false").Order("created_at desc").Find(&templates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch email templates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email templates fetched successfully!", fiber.Map{
		"templates": templates,
		"total":     len(templates),
	})
}

// UpdateEmailTemplate updates an email template row.
func UpdateEmailTemplate(c *fiber.Ctx) error {
	templateID, err := c.ParamsInt("id")
	if err != nil || templateID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid template id!", nil)
	}

	var tpl certModels.EmailTemplate
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", templateID).First(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Email template not found!", nil)
	}

	reqData, ok := c.Locals("validatedEmailTemplate").(*EmailTemplateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tpl.Name = reqData.Name
	tpl.Subject = reqData.Subject
	tpl.Body = reqData.Body
	tpl.LocationID = reqData.LocationID
	tpl.IsDefault = reqData.IsDefault

	if err := database.Database.Db.Save(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update email template!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email template updated successfully!", tpl)
}

// DeleteEmailTemplate soft-deletes an email template.
func DeleteEmailTemplate(c *fiber.Ctx) error {
	templateID, err := c.ParamsInt("id")
	if err != nil || templateID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid template id!", nil)
	}

	var tpl certModels.EmailTemplate
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", templateID).First(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Email template not found!", nil)
	}

	if err := database.Database.Db.Model(&tpl).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete email template!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email template deleted successfully!", nil)
}
