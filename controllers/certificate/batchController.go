package controllers

import (
	"certhub/database"
	"certhub/middleware"
	certModels "certhub/models/certificate"

	"github.com/gofiber/fiber/v2"
)

// GetBatchOperation returns one batch operation for progress polling.
func GetBatchOperation(c *fiber.Ctx) error {
	batchID, err := c.ParamsInt("id")
	if err != nil || batchID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid batch id!", nil)
	}

	var op certModels.BatchOperation
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", batchID).First(&op).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Batch operation not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch operation fetched successfully!", op)
}

// ListBatchOperations returns recent batch operations, newest first.
func ListBatchOperations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var ops []certModels.BatchOperation
	if err := database.Database.Db.Where("is_deleted = false").
		Order("created_at desc").Limit(limit).Find(&ops).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batch operations!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch operations fetched successfully!", fiber.Map{
		"batches": ops,
		"total":   len(ops),
	})
}
