package models

import (
	"time"

	"gorm.io/gorm"
)

// UserSubject is a user's enrollment in a subject.
type UserSubject struct {
	gorm.Model
	UserID        uint `gorm:"uniqueIndex:idx_user_subject;not null"`
	SubjectID     uint `gorm:"uniqueIndex:idx_user_subject;not null"`
	Subject       Subject
	TotalTestBall float64 `gorm:"not null;default:0"`
	StartedTime   time.Time
	Started       bool `gorm:"not null;default:false"`
	Finished      bool `gorm:"not null;default:false"`
}

type UserStep struct {
	gorm.Model
	UserID     uint `gorm:"uniqueIndex:idx_user_step;not null"`
	StepID     uint `gorm:"uniqueIndex:idx_user_step;not null"`
	Step       Step
	Finished   bool `gorm:"not null;default:false"`
	FinishedAt *time.Time
}
