package utils

import (
	"fmt"
	"log"

	"certhub/config"
	"certhub/models"
	certModels "certhub/models/certificate"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"
)

// Learning-platform client: paged REST, API key + subdomain header auth.
// Used by the enrollment sync workflow to pull scores/completions onto
// roster members.

// Enrollment is one learning-platform enrollment record.
type Enrollment struct {
	ID             string  `json:"id"`
	UserName       string  `json:"user_name"`
	UserEmail      string  `json:"user_email"`
	CourseName     string  `json:"course_name"`
	PercentageDone float64 `json:"percentage_completed"`
	Completed      bool    `json:"completed"`
}

// EnrollmentPage is one page of enrollment results.
type EnrollmentPage struct {
	Items []Enrollment `json:"items"`
	Meta  struct {
		CurrentPage int `json:"current_page"`
		TotalPages  int `json:"total_pages"`
	} `json:"meta"`
}

// LearnClient talks to the learning platform API.
type LearnClient struct {
	client    *resty.Client
	subdomain string
}

// NewLearnClient builds a client from the configured API key and subdomain.
func NewLearnClient() *LearnClient {
	base := fmt.Sprintf("https://api.%s.thinkific.com/api/public/v1", config.AppConfig.LearnSubdomain)
	return newLearnClientWithBase(base)
}

func newLearnClientWithBase(base string) *LearnClient {
	client := resty.New().
		SetBaseURL(base).
		SetHeader("X-Auth-API-Key", config.AppConfig.LearnAPIKey).
		SetHeader("X-Auth-Subdomain", config.AppConfig.LearnSubdomain)
	return &LearnClient{client: client, subdomain: config.AppConfig.LearnSubdomain}
}

// FetchEnrollments fetches one page of enrollments.
func (l *LearnClient) FetchEnrollments(page int) (*EnrollmentPage, error) {
	var result EnrollmentPage
	resp, err := l.client.R().
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetQueryParam("limit", "50").
		SetResult(&result).
		Get("/enrollments")
	if err != nil {
		return nil, fmt.Errorf("fetch enrollments page %d: %w", page, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch enrollments page %d: status %d: %s", page, resp.StatusCode(), resp.String())
	}
	return &result, nil
}

// SyncEnrollments walks every enrollment page and updates matching roster
// members' scores and completion flags. Best-effort: a member with no match
// is skipped, a page error stops the walk and is returned.
func SyncEnrollments(db *gorm.DB, client *LearnClient) (int, error) {
	updated := 0
	page := 1
	for {
		result, err := client.FetchEnrollments(page)
		if err != nil {
			return updated, err
		}

		for _, enrollment := range result.Items {
			var member certModels.RosterMember
			err := db.Where("(external_id = ? OR email = ?) AND is_deleted = false",
				enrollment.ID, enrollment.UserEmail).First(&member).Error
			if err != nil {
				continue
			}

			member.ExternalID = enrollment.ID
			member.Score = enrollment.PercentageDone
			member.Completed = enrollment.Completed
			if err := db.Save(&member).Error; err != nil {
				log.Printf("[SYNC] Failed to update roster member %d: %v", member.ID, err)
				continue
			}
			updated++
		}

		if result.Meta.CurrentPage >= result.Meta.TotalPages || len(result.Items) == 0 {
			break
		}
		page++
	}

	Audit(models.AuditEnrollmentSync, "roster_member", 0, map[string]interface{}{
		"updated": updated,
	})
	log.Printf("[SYNC] Enrollment sync completed, %d roster members updated", updated)
	return updated, nil
}
