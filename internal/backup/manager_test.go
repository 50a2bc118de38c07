package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	dbPath string
	data   []byte
	calls  int
}

func (f *fakeSnapshotter) DBPath() string { return f.dbPath }

func (f *fakeSnapshotter) SnapshotTo(dstPath string) error {
	f.calls++
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dstPath, f.data, 0o644)
}

func TestNewManager_Disabled(t *testing.T) {
	t.Parallel()

	m, err := NewManager(&fakeSnapshotter{dbPath: "/tmp/yardline.duckdb"}, Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestNewManager_EnabledRequiresDBPath(t *testing.T) {
	t.Parallel()

	_, err := NewManager(&fakeSnapshotter{}, Config{Enabled: true, LocalDir: t.TempDir()}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewManager_EnabledRequiresLocalDir(t *testing.T) {
	t.Parallel()

	_, err := NewManager(&fakeSnapshotter{dbPath: "/tmp/yardline.duckdb"}, Config{Enabled: true}, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunOnce_CreatesAndPrunesLocalBackups(t *testing.T) {
	t.Parallel()

	localDir := t.TempDir()
	store := &fakeSnapshotter{dbPath: "/tmp/yardline.duckdb", data: []byte("snapshot")}
	m, err := NewManager(store, Config{Enabled: true, LocalDir: localDir, KeepLast: 2}, zerolog.Nop())
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return at }

	var paths []string
	for i := 0; i < 3; i++ {
		p, err := m.RunOnce(context.Background())
		require.NoError(t, err)
		paths = append(paths, p)
		at = at.Add(time.Minute)
	}

	files, err := filepath.Glob(filepath.Join(localDir, "yardline-*.duckdb"))
	require.NoError(t, err)
	assert.ElementsMatch(t, paths[1:], files, "oldest snapshot pruned")
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	store := &fakeSnapshotter{dbPath: "/tmp/yardline.duckdb", data: []byte("x")}
	m, err := NewManager(store, Config{Enabled: true, LocalDir: t.TempDir(), Interval: time.Hour}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
