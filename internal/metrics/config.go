package metrics

import (
	"path/filepath"
	"time"

	"codeberg.org/mutker/poemon/internal/errors"
)

const (
	defaultDirPerm      = 0o755
	defaultDBPath       = "/var/lib/poemon/metrics.db"
	defaultBatchSize    = 30
	defaultBatchTimeout = time.Minute
)

type Config struct {
	DBPath string
	// BackupDir receives a copy of the database before a schema
	// migration; defaults to a backups directory next to DBPath
	BackupDir    string
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

	// Only validate DBPath if metrics is enabled
	if c.Enabled && c.DBPath == "" {
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

func (c Config) backupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(c.DBPath), "backups")
}

// batching reports whether snapshots are buffered and flushed in the
// background instead of written one by one
func (c Config) batching() bool {
	return c.BatchSize > 1 && c.BatchTimeout > 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
