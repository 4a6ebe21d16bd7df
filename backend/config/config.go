package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	JWTSecret  string
	ServerPort string
	LogMode    string
	MediaHost  string

	// PassingBall is the minimum session ball that unlocks the next step.
	PassingBall float64
	// FinishClosesSession makes the finish protocol close the session like submit does.
	// With false, finish leaves the session open and can be repeated.
	FinishClosesSession bool
	// OrderingMode is "canonical" or "legacy".
	OrderingMode string
	// BonusByQuestionType passes the question type where the level is expected
	// when computing the finish bonus, as older deployments did.
	BonusByQuestionType bool
	// RandomSeed seeds question sampling; 0 means time based.
	RandomSeed int64
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DBDriver:     getEnv("DB_DRIVER", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", "stepwise"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogMode:      getEnv("LOG_MODE", "dev"),
		MediaHost:    getEnv("MEDIA_HOST", "http://localhost:8080"),
		OrderingMode: getEnv("ORDERING_MODE", "canonical"),
	}

	if cfg.PassingBall, err = strconv.ParseFloat(getEnv("PASSING_BALL", "60"), 64); err != nil {
		return nil, fmt.Errorf("PASSING_BALL: %w", err)
	}
	if cfg.FinishClosesSession, err = strconv.ParseBool(getEnv("FINISH_CLOSES_SESSION", "true")); err != nil {
		return nil, fmt.Errorf("FINISH_CLOSES_SESSION: %w", err)
	}
	if cfg.BonusByQuestionType, err = strconv.ParseBool(getEnv("BONUS_BY_QUESTION_TYPE", "false")); err != nil {
		return nil, fmt.Errorf("BONUS_BY_QUESTION_TYPE: %w", err)
	}
	if cfg.RandomSeed, err = strconv.ParseInt(getEnv("RANDOM_SEED", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("RANDOM_SEED: %w", err)
	}
	if cfg.OrderingMode != "canonical" && cfg.OrderingMode != "legacy" {
		return nil, fmt.Errorf("ORDERING_MODE: unknown mode %q", cfg.OrderingMode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
