package automation

import (
	"time"

	"codeberg.org/mutker/prxgyz/internal/errors"
)

const (
	defaultDirPerm      = 0o755
	defaultDBPath       = "/var/lib/prxgyz/automation.db"
	defaultBatchSize    = 16
	defaultBatchTimeout = 5 * time.Second
)

type Config struct {
	DBPath       string
	BatchSize    int
	BatchTimeout time.Duration
	Enabled      bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Enabled:      false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate storage settings if recording is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			BatchSize    int
			BatchTimeout time.Duration
		}{c.BatchSize, c.BatchTimeout})
	}
	return nil
}
