package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/logger"
)

// env is what every command working on an existing repo needs.
type env struct {
	root string
	cfg  *config.Config
	log  zerolog.Logger
	svc  *ledger.Service
}

func loadEnv(repoDir string) (*env, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("not a tally repository (%s): %w", root, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	svc := ledger.NewService(root, cfg, id.UUID{}, ledger.WithLogger(log))
	return &env{root: root, cfg: cfg, log: log, svc: svc}, nil
}
