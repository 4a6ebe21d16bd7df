package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stepwise/backend/config"
	"stepwise/backend/models"
)

// AccountService issues identities. Token signing stays in the HTTP layer.
type AccountService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewAccountService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *AccountService {
	return &AccountService{DB: db, Cfg: cfg, Logger: logger}
}

// Profile is a user together with the mean ball over all of their sessions.
type Profile struct {
	User          models.User
	UserTotalBall float64
}

func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	db := s.DB.WithContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	var taken int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
		return nil, classify(s.Logger, "register", err)
	}
	if taken > 0 {
		return nil, &Error{
			Kind:    KindValidation,
			Message: "email already registered",
			Details: map[string]string{"email": "unique"},
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, classify(s.Logger, "register", err)
	}

	user := models.User{
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, classify(s.Logger, "register", err)
	}
	return &user, nil
}

// Login checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, classify(s.Logger, "login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newError(KindUnauthorized, "invalid credentials")
	}
	return &user, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	err := db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "user %d not found", userID)
	}
	if err != nil {
		return nil, classify(s.Logger, "profile", err)
	}

	// sessions that were never scored count as zero
	var agg struct {
		Total float64
		Count int64
	}
	if err := db.Model(&models.UserTotalTestResult{}).
		Select("COALESCE(SUM(ball), 0) AS total, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Scan(&agg).Error; err != nil {
		return nil, classify(s.Logger, "profile", err)
	}

	profile := &Profile{User: user}
	if agg.Count > 0 {
		profile.UserTotalBall = agg.Total / float64(agg.Count)
	}
	return profile, nil
}
