package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultInterval = 6 * time.Hour
	defaultKeepLast = 24

	filePrefix = "yardline-"
	fileSuffix = ".duckdb"
	stampFmt   = "20060102-150405.000"
)

// Manager runs periodic local snapshots and prunes old copies.
type Manager struct {
	store  Snapshotter
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager validates cfg. It returns nil when backups are disabled.
func NewManager(store Snapshotter, cfg Config, logger zerolog.Logger) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("backup: nil snapshotter")
	}
	if strings.TrimSpace(store.DBPath()) == "" {
		return nil, fmt.Errorf("backup: db-path is empty (in-memory store)")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, fmt.Errorf("backup: local-dir is required when backup is enabled")
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create local-dir: %w", err)
	}

	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "backup").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run takes a startup snapshot, then one per interval until ctx is done.
// Snapshot failures are logged and do not stop the loop.
func (m *Manager) Run(ctx context.Context) error {
	if _, err := m.RunOnce(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("startup snapshot failed")
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil {
				m.logger.Warn().Err(err).Msg("periodic snapshot failed")
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// RunOnce creates one local snapshot and prunes old local copies.
// It returns the snapshot path.
func (m *Manager) RunOnce(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filePrefix + m.now().Format(stampFmt) + fileSuffix
	localPath := filepath.Join(m.cfg.LocalDir, name)

	if err := m.store.SnapshotTo(localPath); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	m.logger.Info().Str("path", localPath).Msg("snapshot created")

	if err := pruneLocalBackups(m.cfg.LocalDir, m.cfg.KeepLast); err != nil {
		return localPath, fmt.Errorf("prune local backups: %w", err)
	}
	return localPath, nil
}

func pruneLocalBackups(localDir string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(localDir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return err
	}
	if len(matches) <= keepLast {
		return nil
	}

	// Timestamps sort lexically in chronological order.
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	for _, oldPath := range matches[keepLast:] {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
