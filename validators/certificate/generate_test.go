package certificateValidator

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkGenerateValidatorKeysErrorsByItemIndex(t *testing.T) {
	app := fiber.New()
	app.Post("/bulk", BulkGenerate(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	body := `{
		"batch_name": "spring-class",
		"certificates": [
			{"recipient_name": "Jane Doe", "course_name": "CPR Level A", "issue_date": "not-a-date", "expiry_date": "2028-01-15"},
			{"recipient_name": "", "course_name": "CPR Level A", "issue_date": "2025-01-15", "expiry_date": "2028-01-15"}
		]
	}`
	req := httptest.NewRequest("POST", "/bulk", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var parsed struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))

	// Each item's errors live under their own index, never overwriting
	// another item's entry for the same field.
	assert.Contains(t, parsed.Data, "certificates[0].issue_date")
	assert.Contains(t, parsed.Data, "certificates[1].recipient_name")
	assert.NotContains(t, parsed.Data, "certificates.issue_date")
}
