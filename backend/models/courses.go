package models

import (
	"errors"

	"gorm.io/gorm"
)

// MaxSubjectsPerCategory limits how many subjects a category may hold.
const MaxSubjectsPerCategory = 2

var ErrCategoryFull = errors.New("category already holds the maximum number of subjects")

type Category struct {
	gorm.Model
	Name       string `gorm:"size:100;uniqueIndex;not null"`
	ClickCount uint   `gorm:"not null;default:0"`
	BgImageID  *uint
	BgImage    *Media
	IconID     *uint
	Icon       *Media
	Subjects   []Subject
}

type Subject struct {
	gorm.Model
	Name       string `gorm:"size:200;not null"`
	CategoryID uint   `gorm:"index;not null"`
	Category   Category
	ImageID    *uint
	Image      *Media
	Steps      []Step
}

// BeforeCreate enforces MaxSubjectsPerCategory.
func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	var count int64
	if err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&Subject{}).
		Where("category_id = ?", s.CategoryID).
		Count(&count).Error; err != nil {
		return err
	}
	if count >= MaxSubjectsPerCategory {
		return ErrCategoryFull
	}
	return nil
}

// Step is an ordered lesson unit. Order is unique within a subject by convention only.
type Step struct {
	gorm.Model
	Title       string `gorm:"size:200;not null"`
	Order       int    `gorm:"column:step_order;not null;index"`
	SubjectID   uint   `gorm:"index;not null"`
	Description string
	Files       []StepFile
	Test        *StepTest
}

type StepFile struct {
	gorm.Model
	Title   string `gorm:"size:250"`
	MediaID uint
	Media   Media
	StepID  uint `gorm:"index"`
}
