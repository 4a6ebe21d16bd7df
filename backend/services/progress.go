package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/backend/config"
	"stepwise/backend/models"
)

// ProgressService keeps enrollment and per-step completion state.
type ProgressService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewProgressService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *ProgressService {
	return &ProgressService{DB: db, Cfg: cfg, Logger: logger}
}

type StepProgress struct {
	StepID     uint       `json:"step_id"`
	Order      int        `json:"order"`
	Title      string     `json:"title"`
	Finished   bool       `json:"finished"`
	FinishedAt *time.Time `json:"finished_at"`
}

type SubjectProgress struct {
	Enrollment models.UserSubject
	Steps      []StepProgress
}

// StartSubject enrolls the user in a subject. Enrolling again returns the
// existing record untouched.
func (p *ProgressService) StartSubject(ctx context.Context, userID, subjectID uint) (*models.UserSubject, error) {
	db := p.DB.WithContext(ctx)

	var subject models.Subject
	err := db.First(&subject, subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "subject %d not found", subjectID)
	}
	if err != nil {
		return nil, classify(p.Logger, "start subject", err)
	}

	var enrollment models.UserSubject
	if err := db.Where(models.UserSubject{UserID: userID, SubjectID: subjectID}).
		Attrs(models.UserSubject{Started: true, StartedTime: time.Now()}).
		FirstOrCreate(&enrollment).Error; err != nil {
		return nil, classify(p.Logger, "start subject", err)
	}

	if err := db.Preload("Subject.Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order")
	}).First(&enrollment, enrollment.ID).Error; err != nil {
		return nil, classify(p.Logger, "start subject", err)
	}
	return &enrollment, nil
}

// GetProgress lists the user's enrollments with a finished flag per step.
func (p *ProgressService) GetProgress(ctx context.Context, userID uint) ([]SubjectProgress, error) {
	db := p.DB.WithContext(ctx)

	var enrollments []models.UserSubject
	if err := db.Preload("Subject.Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order")
	}).Where("user_id = ?", userID).Order("id").Find(&enrollments).Error; err != nil {
		return nil, classify(p.Logger, "get progress", err)
	}

	var userSteps []models.UserStep
	if err := db.Where("user_id = ?", userID).Find(&userSteps).Error; err != nil {
		return nil, classify(p.Logger, "get progress", err)
	}
	byStep := make(map[uint]models.UserStep, len(userSteps))
	for _, us := range userSteps {
		byStep[us.StepID] = us
	}

	out := make([]SubjectProgress, 0, len(enrollments))
	for _, e := range enrollments {
		sp := SubjectProgress{Enrollment: e, Steps: make([]StepProgress, 0, len(e.Subject.Steps))}
		for _, step := range e.Subject.Steps {
			us := byStep[step.ID]
			sp.Steps = append(sp.Steps, StepProgress{
				StepID:     step.ID,
				Order:      step.Order,
				Title:      step.Title,
				Finished:   us.Finished,
				FinishedAt: us.FinishedAt,
			})
		}
		out = append(out, sp)
	}
	return out, nil
}

// ensureUserStep makes sure a completion record exists for the pair.
func (p *ProgressService) ensureUserStep(db *gorm.DB, userID, stepID uint) error {
	var us models.UserStep
	return db.Where(models.UserStep{UserID: userID, StepID: stepID}).FirstOrCreate(&us).Error
}

// recordCompletion runs inside the scoring transaction once a session is
// closed. A passing ball finishes the step; the subject total is the sum of
// the best finished ball of each of its tests.
func (p *ProgressService) recordCompletion(tx *gorm.DB, userID uint, stepTest *models.StepTest, ball float64) error {
	var step models.Step
	if err := tx.First(&step, stepTest.StepID).Error; err != nil {
		return err
	}

	if ball >= p.Cfg.PassingBall {
		now := time.Now()
		if err := tx.Model(&models.UserStep{}).
			Where("user_id = ? AND step_id = ?", userID, step.ID).
			Updates(map[string]interface{}{"finished": true, "finished_at": now}).Error; err != nil {
			return err
		}
	}

	var total float64
	if err := tx.Raw(`
		SELECT COALESCE(SUM(best), 0) FROM (
			SELECT MAX(r.ball) AS best
			FROM user_total_test_results r
			JOIN step_tests t ON t.id = r.step_test_id
			JOIN steps s ON s.id = t.step_id
			WHERE r.user_id = ? AND r.finished = ? AND s.subject_id = ? AND r.deleted_at IS NULL
			GROUP BY r.step_test_id
		) AS best_balls`, userID, true, step.SubjectID).Scan(&total).Error; err != nil {
		return err
	}

	var stepCount, finishedCount int64
	if err := tx.Model(&models.Step{}).Where("subject_id = ?", step.SubjectID).Count(&stepCount).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.UserStep{}).
		Joins("JOIN steps ON steps.id = user_steps.step_id").
		Where("user_steps.user_id = ? AND user_steps.finished = ? AND steps.subject_id = ?", userID, true, step.SubjectID).
		Count(&finishedCount).Error; err != nil {
		return err
	}

	return tx.Model(&models.UserSubject{}).
		Where("user_id = ? AND subject_id = ?", userID, step.SubjectID).
		Updates(map[string]interface{}{
			"total_test_ball": total,
			"finished":        stepCount > 0 && finishedCount >= stepCount,
		}).Error
}
