package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/backend/config"
	"stepwise/backend/models"
)

// CatalogService serves categories and subjects.
type CatalogService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewCatalogService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *CatalogService {
	return &CatalogService{DB: db, Cfg: cfg, Logger: logger}
}

// ListCategories returns every category, most viewed first.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.DB.WithContext(ctx).
		Preload("BgImage").
		Preload("Icon").
		Order("click_count DESC, id").
		Find(&categories).Error; err != nil {
		return nil, classify(s.Logger, "list categories", err)
	}
	return categories, nil
}

// ViewCategory bumps the category's click counter in the database and
// returns the category with its subjects. An unknown id changes nothing.
func (s *CatalogService) ViewCategory(ctx context.Context, categoryID uint) (*models.Category, error) {
	db := s.DB.WithContext(ctx)

	res := db.Model(&models.Category{}).
		Where("id = ?", categoryID).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if res.Error != nil {
		return nil, classify(s.Logger, "view category", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, newError(KindNotFound, "category %d not found", categoryID)
	}

	var category models.Category
	if err := db.Preload("BgImage").
		Preload("Icon").
		Preload("Subjects", orderByID).
		Preload("Subjects.Image").
		First(&category, categoryID).Error; err != nil {
		return nil, classify(s.Logger, "view category", err)
	}
	return &category, nil
}

// ListSubjects returns subjects, optionally filtered by a case-insensitive
// name fragment.
func (s *CatalogService) ListSubjects(ctx context.Context, search string) ([]models.Subject, error) {
	query := s.DB.WithContext(ctx).Preload("Image").Order("id")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var subjects []models.Subject
	if err := query.Find(&subjects).Error; err != nil {
		return nil, classify(s.Logger, "list subjects", err)
	}
	return subjects, nil
}

func (s *CatalogService) GetSubject(ctx context.Context, subjectID uint) (*models.Subject, error) {
	var subject models.Subject
	err := s.DB.WithContext(ctx).
		Preload("Image").
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order") }).
		First(&subject, subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "subject %d not found", subjectID)
	}
	if err != nil {
		return nil, classify(s.Logger, "get subject", err)
	}
	return &subject, nil
}
