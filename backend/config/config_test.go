package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "file::memory:")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file::memory:", cfg.DBName)
	assert.Equal(t, 60.0, cfg.PassingBall)
	assert.True(t, cfg.FinishClosesSession)
	assert.False(t, cfg.BonusByQuestionType)
	assert.Equal(t, "canonical", cfg.OrderingMode)
	assert.Equal(t, int64(0), cfg.RandomSeed)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PASSING_BALL", "75.5")
	t.Setenv("FINISH_CLOSES_SESSION", "false")
	t.Setenv("ORDERING_MODE", "legacy")
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 75.5, cfg.PassingBall)
	assert.False(t, cfg.FinishClosesSession)
	assert.Equal(t, "legacy", cfg.OrderingMode)
	assert.Equal(t, int64(42), cfg.RandomSeed)
}

func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"PASSING_BALL":          "sixty",
		"FINISH_CLOSES_SESSION": "maybe",
		"RANDOM_SEED":           "x",
		"ORDERING_MODE":         "shuffled",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
