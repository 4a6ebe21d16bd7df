package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserTotalTestResult is one test-taking session. Ball, CorrectAnswers and
// Percentage stay NULL until the session is scored.
type UserTotalTestResult struct {
	gorm.Model
	StepTestID     uint `gorm:"index;not null"`
	StepTest       StepTest
	UserID         uint `gorm:"index;not null"`
	Ball           *float64
	CorrectAnswers *int
	Percentage     *float64
	Finished       bool             `gorm:"not null;default:false"`
	// QuestionIDs lists the questions drawn at start. Only these can be scored.
	QuestionIDs    datatypes.JSON
	Results        []UserTestResult `gorm:"foreignKey:TotalResultID;constraint:OnDelete:CASCADE"`
}

// UserTestResult is one answered question within a session.
type UserTestResult struct {
	gorm.Model
	TotalResultID uint `gorm:"index;not null"`
	UserID        uint `gorm:"index;not null"`
	QuestionID    uint `gorm:"index;not null"`
	Question      TestQuestion
	Answers       []TestAnswer `gorm:"many2many:user_test_result_answers"`
	// SubmittedAnswerIDs keeps the answer ids exactly as the client sent them.
	SubmittedAnswerIDs datatypes.JSON
}
