package models

import (
	"gorm.io/gorm"
)

// Notification is a non-blocking record created after a certificate email
// is delivered. Failures creating it never affect the send result.
type Notification struct {
	gorm.Model
	Type          string `gorm:"size:50;default:'CERTIFICATE_EMAIL'" json:"type"`
	CertificateID uint   `gorm:"index" json:"certificate_id"`
	Recipient     string `gorm:"size:100" json:"recipient"`
	Message       string `gorm:"size:255" json:"message"`
	IsRead        bool   `gorm:"default:false" json:"is_read"`
	IsDeleted     bool   `gorm:"default:false"`
}
