package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"stepwise/backend/models"
)

func mustCreate(tb testing.TB, db *gorm.DB, what string, value interface{}) {
	tb.Helper()
	if err := db.Create(value).Error; err != nil {
		tb.Fatalf("seed %s: %v", what, err)
	}
}

func SeedUser(tb testing.TB, db *gorm.DB, email string) *models.User {
	tb.Helper()
	u := &models.User{Username: email, Email: email, PasswordHash: "x", Role: models.RoleUser}
	mustCreate(tb, db, "user", u)
	return u
}

func SeedMedia(tb testing.TB, db *gorm.DB, file string) *models.Media {
	tb.Helper()
	m := &models.Media{Type: models.MediaImage, File: file}
	mustCreate(tb, db, "media", m)
	return m
}

func SeedCategory(tb testing.TB, db *gorm.DB, name string) *models.Category {
	tb.Helper()
	c := &models.Category{Name: name}
	mustCreate(tb, db, "category", c)
	return c
}

func SeedSubject(tb testing.TB, db *gorm.DB, categoryID uint, name string) *models.Subject {
	tb.Helper()
	s := &models.Subject{Name: name, CategoryID: categoryID}
	mustCreate(tb, db, "subject", s)
	return s
}

func SeedStep(tb testing.TB, db *gorm.DB, subjectID uint, order int) *models.Step {
	tb.Helper()
	s := &models.Step{Title: "step", Order: order, SubjectID: subjectID}
	mustCreate(tb, db, "step", s)
	return s
}

func SeedStepTest(tb testing.TB, db *gorm.DB, stepID uint, testType string, ballForEach float64, questionCount int) *models.StepTest {
	tb.Helper()
	t := &models.StepTest{
		StepID:          stepID,
		BallForEachTest: ballForEach,
		QuestionCount:   questionCount,
		TestType:        testType,
		TimeForTest:     10 * time.Minute,
	}
	mustCreate(tb, db, "step test", t)
	return t
}

// AnswerSpec describes one answer option of a seeded question.
type AnswerSpec struct {
	Text    string
	Correct bool
	Order   *int
}

// SeedQuestion creates a question with its answers. Answer ids follow the
// order of specs.
func SeedQuestion(tb testing.TB, db *gorm.DB, stepTestID uint, questionType, level string, specs ...AnswerSpec) *models.TestQuestion {
	tb.Helper()
	q := &models.TestQuestion{
		StepTestID:   stepTestID,
		QuestionType: questionType,
		Question:     "question",
		Level:        level,
	}
	mustCreate(tb, db, "question", q)
	for _, spec := range specs {
		a := models.TestAnswer{QuestionID: q.ID, Answer: spec.Text, IsCorrect: spec.Correct, Order: spec.Order}
		mustCreate(tb, db, "answer", &a)
		q.Answers = append(q.Answers, a)
	}
	return q
}

func Enroll(tb testing.TB, db *gorm.DB, userID, subjectID uint) *models.UserSubject {
	tb.Helper()
	us := &models.UserSubject{UserID: userID, SubjectID: subjectID, Started: true, StartedTime: time.Now()}
	mustCreate(tb, db, "user subject", us)
	return us
}

func OpenStep(tb testing.TB, db *gorm.DB, userID, stepID uint) *models.UserStep {
	tb.Helper()
	us := &models.UserStep{UserID: userID, StepID: stepID}
	mustCreate(tb, db, "user step", us)
	return us
}

// SeedSession stores a session as if it had been scored with ball.
func SeedSession(tb testing.TB, db *gorm.DB, userID, stepTestID uint, ball float64, finished bool) *models.UserTotalTestResult {
	tb.Helper()
	s := &models.UserTotalTestResult{UserID: userID, StepTestID: stepTestID, Ball: &ball, Finished: finished}
	mustCreate(tb, db, "session", s)
	return s
}

func IntPtr(v int) *int { return &v }
