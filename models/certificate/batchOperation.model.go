package certificate

import (
	"time"

	"gorm.io/gorm"
)

// Batch operation statuses
const (
	BatchInProgress = "IN_PROGRESS"
	BatchCompleted  = "COMPLETED"
	BatchFailed     = "FAILED"
)

// BatchOperation tracks an aggregate bulk generation or email run. Owned by
// the batch coordinator for its lifetime; callers poll it for progress.
// Individual item failures never mark the batch FAILED; only an
// orchestration-level error does.
type BatchOperation struct {
	gorm.Model
	BatchUID              string     `gorm:"size:36;uniqueIndex" json:"batch_uid"`
	Name                  string     `gorm:"size:150" json:"name"`
	TotalCertificates     int        `json:"total_certificates"`
	ProcessedCertificates int        `json:"processed_certificates"`
	Successful            int        `json:"successful"`
	Failed                int        `json:"failed"`
	Status                string     `gorm:"size:20;default:'IN_PROGRESS'" json:"status"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	IsDeleted             bool       `gorm:"default:false"`
}
