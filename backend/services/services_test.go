package services

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/backend/config"
	"stepwise/backend/testutil"
)

type testEnv struct {
	db         *gorm.DB
	cfg        *config.Config
	progress   *ProgressService
	sessions   *TestSessionService
	gatekeeper *Gatekeeper
	catalog    *CatalogService
	accounts   *AccountService
}

func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	cfg := testutil.Config()
	for _, fn := range tweak {
		fn(cfg)
	}
	logger := zap.NewNop()
	progress := NewProgressService(db, cfg, logger)
	return &testEnv{
		db:         db,
		cfg:        cfg,
		progress:   progress,
		sessions:   NewTestSessionService(db, cfg, logger, progress),
		gatekeeper: NewGatekeeper(db, cfg, logger, progress),
		catalog:    NewCatalogService(db, cfg, logger),
		accounts:   NewAccountService(db, cfg, logger),
	}
}
