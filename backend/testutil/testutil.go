// Package testutil backs package tests with an in-memory SQLite database
// and fixture builders.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"stepwise/backend/config"
	"stepwise/backend/models"
)

// DB opens a fresh, fully migrated in-memory database for tb. Every call
// gets its own schema; the single connection keeps it alive until cleanup.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Config returns the settings tests run with: deterministic sampling, the
// corrected finish and ordering behavior, 60 as the passing ball.
func Config() *config.Config {
	return &config.Config{
		DBDriver:            "sqlite",
		JWTSecret:           "testsecret",
		ServerPort:          "8080",
		LogMode:             "test",
		MediaHost:           "http://media.test",
		PassingBall:         60,
		FinishClosesSession: true,
		OrderingMode:        "canonical",
		RandomSeed:          42,
	}
}
