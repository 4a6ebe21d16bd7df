package utils

import (
	"strings"

	"go.uber.org/zap"
)

// InitLogger builds the application logger for the given LOG_MODE.
// "prod" logs JSON at info level, "test" discards everything and any other
// mode gets the colored development console.
func InitLogger(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "test":
		return zap.NewNop(), nil
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
