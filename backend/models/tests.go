package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	TestTypeMidterm = "midterm"
	TestTypeFinal   = "final"
)

const (
	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"
)

const (
	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
	QuestionTypeOrdering = "ordering"
)

var ErrOrderRequired = errors.New("answers of an ordering question must carry an order")

// StepTest is the quiz attached to a step.
type StepTest struct {
	gorm.Model
	StepID          uint    `gorm:"uniqueIndex;not null"`
	BallForEachTest float64 `gorm:"not null"`
	QuestionCount   int     `gorm:"not null"`
	TestType        string  `gorm:"size:30;not null"`
	// TimeForTest is stored for clients; the server does not enforce it.
	TimeForTest time.Duration
	Questions   []TestQuestion
}

type TestQuestion struct {
	gorm.Model
	StepTestID   uint   `gorm:"index;not null"`
	QuestionType string `gorm:"size:30;not null"`
	Question     string
	Level        string       `gorm:"size:10;not null;default:easy"`
	Answers      []TestAnswer `gorm:"foreignKey:QuestionID"`
}

type TestAnswer struct {
	gorm.Model
	QuestionID uint `gorm:"index;not null"`
	Answer     string
	IsCorrect  bool
	Order      *int `gorm:"column:answer_order"`
}

// BeforeSave rejects unordered answers on ordering questions.
func (a *TestAnswer) BeforeSave(tx *gorm.DB) error {
	if a.Order != nil {
		return nil
	}
	var question TestQuestion
	err := tx.Session(&gorm.Session{NewDB: true}).
		Select("id", "question_type").
		First(&question, a.QuestionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if question.QuestionType == QuestionTypeOrdering {
		return ErrOrderRequired
	}
	return nil
}
