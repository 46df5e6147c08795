package controllers

import (
	"context"
	"fmt"
	"io"
	"time"

	"certhub/database"
	"certhub/middleware"
	certModels "certhub/models/certificate"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// CreateTemplate registers a certificate template. The PDF asset comes in
// as a multipart file and is stored under templates/<timestamp>_<name>.pdf.
func CreateTemplate(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTemplate").(*TemplateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	file, err := c.FormFile("asset")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Template asset file is required!", nil)
	}

	src, err := file.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read template asset!", nil)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read template asset!", nil)
	}
	if !utils.IsPDF(data) {
		return middleware.ValidationErrorResponse(c, map[string]string{"asset": "Template asset must be a PDF file!"})
	}

	key := fmt.Sprintf("templates/%d_%s", time.Now().Unix(), file.Filename)
	if err := utils.Store.Put(context.Background(), key, data, "application/pdf"); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload template asset!", nil)
	}

	tpl := certModels.CertificateTemplate{
		Name:       reqData.Name,
		StorageKey: key,
		LocationID: reqData.LocationID,
		IsPrimary:  reqData.IsPrimary,
		IsDefault:  reqData.IsDefault,
	}
	if reqData.FieldLayout != "" {
		tpl.FieldLayout = datatypes.JSON([]byte(reqData.FieldLayout))
	}

	if err := database.Database.Db.Create(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create template!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Template created successfully!", tpl)
}

// TemplateRequest is the metadata payload for a certificate template.
type TemplateRequest struct {
	Name        string `json:"name" form:"name"`
	LocationID  *uint  `json:"location_id" form:"location_id"`
	IsPrimary   bool   `json:"is_primary" form:"is_primary"`
	IsDefault   bool   `json:"is_default" form:"is_default"`
	FieldLayout string `json:"field_layout" form:"field_layout"`
}

// ListTemplates returns all templates, optionally filtered by location.
func ListTemplates(c *fiber.Ctx) error {
	db := database.Database.Db.Where("is_deleted = false")
	if locationID := c.QueryInt("location_id", 0); locationID > 0 {
		db = db.Where("location_id = ?", locationID)
	}

	var templates []certModels.CertificateTemplate
	if err := db.Order("created_at desc").Find(&templates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch templates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Templates fetched successfully!", fiber.Map{
		"templates": templates,
		"total":     len(templates),
	})
}

// UpdateTemplate updates template metadata (not the asset).
func UpdateTemplate(c *fiber.Ctx) error {
	templateID, err := c.ParamsInt("id")
	if err != nil || templateID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid template id!", nil)
	}

	var tpl certModels.CertificateTemplate
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", templateID).First(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
	}

	reqData, ok := c.Locals("validatedTemplate").(*TemplateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tpl.Name = reqData.Name
	tpl.LocationID = reqData.LocationID
	tpl.IsPrimary = reqData.IsPrimary
	tpl.IsDefault = reqData.IsDefault
	if reqData.FieldLayout != "" {
		tpl.FieldLayout = datatypes.JSON([]byte(reqData.FieldLayout))
	}

	if err := database.Database.Db.Save(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update template!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Template updated successfully!", tpl)
}

// DeleteTemplate soft-deletes a template. The stored asset is kept so
// already-issued certificates keep their rendering history.
func DeleteTemplate(c *fiber.Ctx) error {
	templateID, err := c.ParamsInt("id")
	if err != nil || templateID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid template id!", nil)
	}

	var tpl certModels.CertificateTemplate
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", templateID).First(&tpl).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
	}

	if err := database.Database.Db.Model(&tpl).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete template!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Template deleted successfully!", nil)
}
