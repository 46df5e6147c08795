package models

import (
	"gorm.io/gorm"
)

// Location represents a training location/provider. Certificates and
// templates are optionally scoped to a location.
type Location struct {
	gorm.Model
	Name      string `gorm:"size:150;not null" json:"name"`
	Phone     string `gorm:"size:30" json:"phone,omitempty"`
	Email     string `gorm:"size:100" json:"email,omitempty"`
	Website   string `gorm:"size:200" json:"website,omitempty"`
	IsDeleted bool   `gorm:"default:false"`
}
