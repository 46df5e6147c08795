package certificate

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CertificateTemplate is a PDF background stored in object storage plus the
// field layout drawn over it. Resolution order: explicit id, then the
// location's primary template, then the single global default.
type CertificateTemplate struct {
	gorm.Model
	Name        string         `gorm:"size:150;not null" json:"name"`
	StorageKey  string         `gorm:"size:300;not null" json:"storage_key"`
	LocationID  *uint          `gorm:"index" json:"location_id,omitempty"`
	IsPrimary   bool           `gorm:"default:false" json:"is_primary"` // primary for its location
	IsDefault   bool           `gorm:"default:false" json:"is_default"` // global fallback
	FieldLayout datatypes.JSON `json:"field_layout"`                    // per-field x/y/font/size
	IsDeleted   bool           `gorm:"default:false"`
}

// EmailTemplate holds subject/body strings with {{token}} placeholders and
// {{#if token}}...{{/if}} conditional blocks. Location-scoped rows win over
// the default row.
type EmailTemplate struct {
	gorm.Model
	Name       string `gorm:"size:150;not null" json:"name"`
	Subject    string `gorm:"size:300;not null" json:"subject"`
	Body       string `gorm:"type:text;not null" json:"body"`
	LocationID *uint  `gorm:"index" json:"location_id,omitempty"`
	IsDefault  bool   `gorm:"default:false" json:"is_default"`
	IsDeleted  bool   `gorm:"default:false"`
}
