package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/backend/config"
	"stepwise/backend/models"
)

// Gatekeeper decides whether a user may open a step. The first step of a
// subject is always open; any later step needs an active enrollment and a
// session on the previous step's test scoring at least PassingBall. A
// previous step without a test keeps the next one locked.
type Gatekeeper struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Logger   *zap.Logger
	Progress *ProgressService
}

func NewGatekeeper(db *gorm.DB, cfg *config.Config, logger *zap.Logger, progress *ProgressService) *Gatekeeper {
	return &Gatekeeper{DB: db, Cfg: cfg, Logger: logger, Progress: progress}
}

// GetStep returns the step when the user may see it. Granting access also
// opens a completion record so the step's test can be started.
func (g *Gatekeeper) GetStep(ctx context.Context, userID, stepID uint) (*models.Step, error) {
	db := g.DB.WithContext(ctx)

	var step models.Step
	err := db.Preload("Files", orderByID).Preload("Files.Media").Preload("Test").First(&step, stepID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "step %d not found", stepID)
	}
	if err != nil {
		return nil, classify(g.Logger, "get step", err)
	}

	if step.Order != 1 {
		if err := g.checkUnlocked(db, userID, &step); err != nil {
			return nil, classify(g.Logger, "get step", err)
		}
	}

	if g.Progress != nil {
		if err := g.Progress.ensureUserStep(db, userID, step.ID); err != nil {
			return nil, classify(g.Logger, "get step", err)
		}
	}
	return &step, nil
}

func (g *Gatekeeper) checkUnlocked(db *gorm.DB, userID uint, step *models.Step) error {
	var enrolled int64
	if err := db.Model(&models.UserSubject{}).
		Where("user_id = ? AND subject_id = ? AND started = ?", userID, step.SubjectID, true).
		Count(&enrolled).Error; err != nil {
		return err
	}
	if enrolled == 0 {
		return newError(KindNotStarted, "you didn't start subject yet")
	}

	var prev models.Step
	err := db.Where("subject_id = ? AND step_order = ?", step.SubjectID, step.Order-1).First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(KindNotFound, "previous step of step %d not found", step.ID)
	}
	if err != nil {
		return err
	}

	var prevTest models.StepTest
	err = db.Where("step_id = ?", prev.ID).First(&prevTest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(KindLocked, "you were not allowed to pass next step")
	}
	if err != nil {
		return err
	}

	var passed int64
	if err := db.Model(&models.UserTotalTestResult{}).
		Where("step_test_id = ? AND user_id = ? AND ball >= ?", prevTest.ID, userID, g.Cfg.PassingBall).
		Count(&passed).Error; err != nil {
		return err
	}
	if passed == 0 {
		return newError(KindLocked, "you were not allowed to pass next step")
	}
	return nil
}
