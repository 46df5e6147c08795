package certificate

import (
	"time"

	"gorm.io/gorm"
)

// Roster is a class roster: one row per course sitting at a location.
type Roster struct {
	gorm.Model
	Name       string    `gorm:"size:150;not null" json:"name"`
	CourseName string    `gorm:"size:150;not null" json:"course_name"`
	LocationID *uint     `gorm:"index" json:"location_id,omitempty"`
	ClassDate  time.Time `json:"class_date"`
	IsDeleted  bool      `gorm:"default:false"`
}

// RosterMember is one attendee on a roster. Score/completion come from the
// learning-platform sync; certificates are generated per completed member.
type RosterMember struct {
	gorm.Model
	RosterID   uint    `gorm:"index;not null" json:"roster_id"`
	Name       string  `gorm:"size:150;not null" json:"name"`
	Email      string  `gorm:"size:100" json:"email"`
	ExternalID string  `gorm:"size:50;index" json:"external_id,omitempty"` // learning platform enrollment id
	Score      float64 `json:"score"`
	Completed  bool    `gorm:"default:false" json:"completed"`
	IsDeleted  bool    `gorm:"default:false"`
}
