package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions recorded by the workflow
const (
	AuditCertificateGenerated = "CERTIFICATE_GENERATED"
	AuditCertificateFailed    = "CERTIFICATE_GENERATION_FAILED"
	AuditCertificateRevoked   = "CERTIFICATE_REVOKED"
	AuditCertificateArchived  = "CERTIFICATE_ARCHIVED"
	AuditCertificateVerified  = "CERTIFICATE_VERIFIED"
	AuditEmailSent            = "CERTIFICATE_EMAIL_SENT"
	AuditEmailFailed          = "CERTIFICATE_EMAIL_FAILED"
	AuditBatchStarted         = "BATCH_STARTED"
	AuditBatchCompleted       = "BATCH_COMPLETED"
	AuditEnrollmentSync       = "ENROLLMENT_SYNC"
	AuditReconcileSweep       = "RECONCILE_SWEEP"
)

// AuditLog is a best-effort record of a workflow event. Writes go through
// the audit logger queue and are never allowed to fail a caller.
type AuditLog struct {
	gorm.Model
	Action     string         `gorm:"size:50;index;not null" json:"action"`
	EntityType string         `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint           `gorm:"index" json:"entity_id"`
	Details    datatypes.JSON `json:"details,omitempty"`
}
