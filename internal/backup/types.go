// Package backup takes periodic file snapshots of the yard database.
package backup

import "time"

// Config controls periodic DuckDB backups.
type Config struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	LocalDir string        `mapstructure:"local-dir"`
	KeepLast int           `mapstructure:"keep-last"`
}

// Snapshotter is the minimal DB snapshot contract used by Manager.
type Snapshotter interface {
	DBPath() string
	SnapshotTo(dstPath string) error
}
