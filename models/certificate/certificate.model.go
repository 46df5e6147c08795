package certificate

import (
	"time"

	"gorm.io/gorm"
)

// Stored certificate statuses
const (
	StatusActive  = "ACTIVE"
	StatusExpired = "EXPIRED"
	StatusRevoked = "REVOKED"
)

// Generation lifecycle. A certificate row is created PENDING and walks
// forward one step per persistence stage; FAILED is terminal from any
// non-terminal state. The reconcile sweep fails rows stuck before COMPLETED.
const (
	GenerationPending          = "PENDING"
	GenerationDocumentUploaded = "DOCUMENT_UPLOADED"
	GenerationCompleted        = "COMPLETED"
	GenerationFailed           = "FAILED"
)

// Verification statuses derived at lookup time, never stored
const (
	VerifyValid         = "VALID"
	VerifyActive        = "ACTIVE"
	VerifyExpired       = "EXPIRED"
	VerifyRevoked       = "REVOKED"
	VerifyNotFound      = "NOT_FOUND"
	VerifyInvalidFormat = "INVALID_FORMAT"
	VerifyError         = "ERROR"
)

// Email statuses
const (
	EmailSent = "SENT"
)

// Certificate represents an issued certificate. Rows are never hard-deleted
// by the workflow; revoke/archive are status transitions.
type Certificate struct {
	gorm.Model
	RecipientName    string     `gorm:"size:150;not null" json:"recipient_name"`
	RecipientEmail   string     `gorm:"size:100" json:"recipient_email"`
	CourseName       string     `gorm:"size:150;not null" json:"course_name"`
	InstructorName   string     `gorm:"size:150" json:"instructor_name,omitempty"`
	IssueDate        time.Time  `json:"issue_date"`
	ExpiryDate       time.Time  `json:"expiry_date"`
	VerificationCode string     `gorm:"size:10;uniqueIndex;not null" json:"verification_code"`
	LocationID       *uint      `gorm:"index" json:"location_id,omitempty"`
	RosterID         *uint      `gorm:"index" json:"roster_id,omitempty"`
	BatchID          *uint      `gorm:"index" json:"batch_id,omitempty"`
	Status           string     `gorm:"size:20;default:'ACTIVE'" json:"status"`
	GenerationStatus string     `gorm:"size:20;default:'PENDING'" json:"generation_status"`
	GenerationError  string     `gorm:"size:500" json:"generation_error,omitempty"`
	CertificateURL   string     `gorm:"size:500" json:"certificate_url"`
	EmailStatus      string     `gorm:"size:20" json:"email_status,omitempty"`
	LastEmailedAt    *time.Time `json:"last_emailed_at,omitempty"`
	Archived         bool       `gorm:"default:false" json:"archived"`
	IsDeleted        bool       `gorm:"default:false"`
}

// DisplayDate renders a date the way it is printed on certificates and in
// emails, e.g. "January 15, 2025".
func DisplayDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
