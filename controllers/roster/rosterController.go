package controllers

import (
	"strings"
	"time"

	"certhub/database"
	"certhub/middleware"
	"certhub/models"
	certModels "certhub/models/certificate"
	"certhub/utils"

	"github.com/gofiber/fiber/v2"
)

// ListRosters returns rosters, optionally filtered by location.
func ListRosters(c *fiber.Ctx) error {
	db := database.Database.Db.Where("is_deleted = false")
	if locationID := c.QueryInt("location_id", 0); locationID > 0 {
		db = db.Where("location_id = ?", locationID)
	}

	var rosters []certModels.Roster
	if err := db.Order("class_date desc").Find(&rosters).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch rosters!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rosters fetched successfully!", fiber.Map{
		"rosters": rosters,
		"total":   len(rosters),
	})
}

// GetRoster returns one roster with its members.
func GetRoster(c *fiber.Ctx) error {
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
	if err := db.Where("roster_id = ? AND is_deleted = false", roster.ID).Order("name asc").Find(&members).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch roster members!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Roster fetched successfully!", fiber.Map{
		"roster":  roster,
		"members": members,
	})
}

// RosterRequest is the payload for creating a roster with its members.
type RosterRequest struct {
	Name       string `json:"name"`
	CourseName string `json:"course_name"`
	LocationID *uint  `json:"location_id"`
	ClassDate  string `json:"class_date"`
	Members    []struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		ExternalID string `json:"external_id"`
	} `json:"members"`
}

// CreateRoster creates a roster and its members in one call.
func CreateRoster(c *fiber.Ctx) error {
	reqData := new(RosterRequest)
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	errors := make(map[string]string)
	if strings.TrimSpace(reqData.Name) == "" {
		errors["name"] = "Roster name is required!"
	}
	if strings.TrimSpace(reqData.CourseName) == "" {
		errors["course_name"] = "Course name is required!"
	}
	var classDate time.Time
	if strings.TrimSpace(reqData.ClassDate) == "" {
		errors["class_date"] = "Class date is required!"
	} else {
		var err error
		classDate, err = utils.ParseCertificateDate(reqData.ClassDate)
		if err != nil {
			errors["class_date"] = "Class date has an invalid format!"
		}
	}
	if len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}

	db := database.Database.Db

	roster := certModels.Roster{
		Name:       strings.TrimSpace(reqData.Name),
		CourseName: strings.TrimSpace(reqData.CourseName),
		LocationID: reqData.LocationID,
		ClassDate:  classDate,
	}
	if err := db.Create(&roster).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create roster!", nil)
	}

	for _, m := range reqData.Members {
		if strings.TrimSpace(m.Name) == "" {
			continue
		}
		member := certModels.RosterMember{
			RosterID:   roster.ID,
			Name:       strings.TrimSpace(m.Name),
			Email:      strings.TrimSpace(m.Email),
			ExternalID: m.ExternalID,
		}
		if err := db.Create(&member).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create roster member!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Roster created successfully!", roster)
}

// ListLocations returns all locations.
func ListLocations(c *fiber.Ctx) error {
	var locations []models.Location
	if err := database.Database.Db.Where("is_deleted = false").Order("name asc").Find(&locations).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch locations!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Locations fetched successfully!", fiber.Map{
		"locations": locations,
		"total":     len(locations),
	})
}

// CreateLocation creates a location.
func CreateLocation(c *fiber.Ctx) error {
	reqData := new(struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Website string `json:"website"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if strings.TrimSpace(reqData.Name) == "" {
		return middleware.ValidationErrorResponse(c, map[string]string{"name": "Location name is required!"})
	}

	location := models.Location{
		Name:    strings.TrimSpace(reqData.Name),
		Phone:   reqData.Phone,
		Email:   reqData.Email,
		Website: reqData.Website,
	}
	if err := database.Database.Db.Create(&location).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create location!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Location created successfully!", location)
}
