package templateValidator

import (
	"encoding/json"
	"strings"

	controllers "certhub/controllers/template"
	"certhub/middleware"

	"github.com/gofiber/fiber/v2"
)

// Template validates certificate template metadata (multipart or JSON body)
func Template() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.TemplateRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "Template name is required!"
		} else if len(strings.TrimSpace(reqData.Name)) < 3 {
			errors["name"] = "Template name must be at least 3 characters long!"
		}

		if reqData.IsPrimary && reqData.LocationID == nil {
			errors["is_primary"] = "A primary template must belong to a location!"
		}

		if reqData.FieldLayout != "" && !json.Valid([]byte(reqData.FieldLayout)) {
			errors["field_layout"] = "Field layout must be valid JSON!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTemplate", reqData)
		return c.Next()
	}
}

// EmailTemplate validates email template payloads
func EmailTemplate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.EmailTemplateRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "Template name is required!"
		}
		if strings.TrimSpace(reqData.Subject) == "" {
			errors["subject"] = "Subject is required!"
		}
		if strings.TrimSpace(reqData.Body) == "" {
			errors["body"] = "Body is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEmailTemplate", reqData)
		return c.Next()
	}
}
