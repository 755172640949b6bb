package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string) (*Watcher, chan *Config, chan error) {
	t.Helper()

	w, err := NewWatcher(path, DefaultConfig(), nil)
	require.NoError(t, err)
	w.SetSettleDelay(10 * time.Millisecond)

	reloads := make(chan *Config, 4)
	errs := make(chan error, 4)
	w.SetReloadCallback(func(c *Config) { reloads <- c })
	w.SetErrorCallback(func(err error) { errs <- err })

	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w, reloads, errs
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, reloads, _ := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("[bar]\ntheme = \"nord\"\n"), 0644))

	select {
	case cfg := <-reloads:
		assert.Equal(t, "nord", cfg.Bar.Theme)
		assert.Equal(t, "nord", w.Current().Bar.Theme)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_ReloadsOnAtomicSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	_, reloads, _ := startWatcher(t, path)

	cfg := DefaultConfig()
	cfg.Bar.Autohide = true
	require.NoError(t, cfg.Save(path))

	select {
	case got := <-reloads:
		assert.True(t, got.Bar.Autohide)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_InvalidConfigKeepsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, reloads, errs := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("[client]\nqueue_size = 0\n"), 0644))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "queue_size")
	case <-reloads:
		t.Fatal("invalid config must not be reloaded")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
	assert.Equal(t, DefaultQueueSize, w.Current().Client.QueueSize)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	_, reloads, _ := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0644))

	select {
	case <-reloads:
		t.Fatal("unexpected reload")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, err := NewWatcher(path, DefaultConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
