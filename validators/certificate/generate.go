package certificateValidator

import (
	"fmt"
	"strings"

	controllers "certhub/controllers/certificate"
	"certhub/middleware"
	"certhub/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// generationPayload mirrors controllers.GenerationRequest with validation tags.
type generationPayload struct {
	RecipientName  string `json:"recipient_name" validate:"required,min=2,max=150"`
	RecipientEmail string `json:"recipient_email" validate:"omitempty,email"`
	CourseName     string `json:"course_name" validate:"required,min=2,max=150"`
	InstructorName string `json:"instructor_name" validate:"omitempty,max=150"`
	IssueDate      string `json:"issue_date" validate:"required"`
	ExpiryDate     string `json:"expiry_date" validate:"required"`
	TemplateID     *uint  `json:"template_id"`
	LocationID     *uint  `json:"location_id"`
	RosterID       *uint  `json:"roster_id"`
	SendEmail      bool   `json:"send_email"`
}

func (p *generationPayload) toRequest() *controllers.GenerationRequest {
	return &controllers.GenerationRequest{
		RecipientName:  strings.TrimSpace(p.RecipientName),
		RecipientEmail: strings.TrimSpace(p.RecipientEmail),
		CourseName:     strings.TrimSpace(p.CourseName),
		InstructorName: strings.TrimSpace(p.InstructorName),
		IssueDate:      p.IssueDate,
		ExpiryDate:     p.ExpiryDate,
		TemplateID:     p.TemplateID,
		LocationID:     p.LocationID,
		RosterID:       p.RosterID,
		SendEmail:      p.SendEmail,
	}
}

func validateGeneration(p *generationPayload) map[string]string {
	errors := make(map[string]string)

	if err := validate.Struct(p); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "RecipientName":
				errors["recipient_name"] = "Recipient name is required (2-150 characters)!"
			case "RecipientEmail":
				errors["recipient_email"] = "Recipient email must be a valid address!"
			case "CourseName":
				errors["course_name"] = "Course name is required (2-150 characters)!"
			case "InstructorName":
				errors["instructor_name"] = "Instructor name is too long!"
			case "IssueDate":
				errors["issue_date"] = "Issue date is required!"
			case "ExpiryDate":
				errors["expiry_date"] = "Expiry date is required!"
			}
		}
	}

	// Dates must be parseable up front so batch items never fail on format
	if p.IssueDate != "" {
		if _, err := utils.ParseCertificateDate(p.IssueDate); err != nil {
			errors["issue_date"] = "Issue date has an invalid format!"
		}
	}
	if p.ExpiryDate != "" {
		if _, err := utils.ParseCertificateDate(p.ExpiryDate); err != nil {
			errors["expiry_date"] = "Expiry date has an invalid format!"
		}
	}

	if p.SendEmail && strings.TrimSpace(p.RecipientEmail) == "" {
		errors["recipient_email"] = "Recipient email is required when send_email is set!"
	}

	return errors
}

// GenerateCertificate validates a single generation request
func GenerateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(generationPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validateGeneration(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGeneration", reqData.toRequest())
		return c.Next()
	}
}

// BulkGenerate validates a bulk generation request
func BulkGenerate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			BatchName    string              `json:"batch_name"`
			Certificates []generationPayload `json:"certificates"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.BatchName) == "" {
			errors["batch_name"] = "Batch name is required!"
		}
		if len(reqData.Certificates) == 0 {
			errors["certificates"] = "At least one certificate is required!"
		}

		requests := make([]controllers.GenerationRequest, 0, len(reqData.Certificates))
		for i := range reqData.Certificates {
			if itemErrors := validateGeneration(&reqData.Certificates[i]); len(itemErrors) > 0 {
				for field, msg := range itemErrors {
					errors[fmt.Sprintf("certificates[%d].%s", i, field)] = msg
				}
				continue
			}
			requests = append(requests, *reqData.Certificates[i].toRequest())
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBulkGeneration", &controllers.BulkGenerationRequest{
			BatchName:    strings.TrimSpace(reqData.BatchName),
			Certificates: requests,
		})
		return c.Next()
	}
}

// RosterGenerate validates the shared fields for a roster-wide run
func RosterGenerate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.RosterGenerationRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.IssueDate) == "" {
			errors["issue_date"] = "Issue date is required!"
		} else if _, err := utils.ParseCertificateDate(reqData.IssueDate); err != nil {
			errors["issue_date"] = "Issue date has an invalid format!"
		}

		if strings.TrimSpace(reqData.ExpiryDate) == "" {
			errors["expiry_date"] = "Expiry date is required!"
		} else if _, err := utils.ParseCertificateDate(reqData.ExpiryDate); err != nil {
			errors["expiry_date"] = "Expiry date has an invalid format!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRosterGeneration", reqData)
		return c.Next()
	}
}

// BulkEmail validates a bulk email request
func BulkEmail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.BulkEmailRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.BatchName) == "" {
			errors["batch_name"] = "Batch name is required!"
		}
		if len(reqData.CertificateIDs) == 0 {
			errors["certificate_ids"] = "At least one certificate id is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBulkEmail", reqData)
		return c.Next()
	}
}
