package models

import (
	"gorm.io/gorm"
)

// User represents an admin/staff account. Accounts are provisioned by the
// surrounding platform; this service only reads them for authorization.
type User struct {
	gorm.Model
	Name      string `gorm:"size:100" json:"name"`
	Email     string `gorm:"size:100;uniqueIndex" json:"email"`
	Role      string `gorm:"size:20;default:'STAFF'" json:"role"` // ADMIN, STAFF
	IsDeleted bool   `gorm:"default:false"`
}
