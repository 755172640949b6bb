package daemon

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hybar/internal/config"
	"github.com/jmylchreest/hybar/internal/hypr"
	"github.com/jmylchreest/hybar/internal/model"
	"github.com/jmylchreest/hybar/internal/store"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DBus.Enabled = false
	cfg.Client.RetryDelay = config.Duration(10 * time.Millisecond)
	cfg.Client.Debounce = config.Duration(5 * time.Millisecond)
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serveCompositor accepts one connection, consumes the subscription and
// returns the connection for writing event lines.
func serveCompositor(t *testing.T) (string, <-chan net.Conn) {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".socket2.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)

	request, err := hypr.SubscriptionRequest(hypr.DefaultCategories)
	require.NoError(t, err)

	conns := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, len(request))
		if _, err := io.ReadFull(conn, buf); err != nil {
			_ = conn.Close()
			return
		}
		conns <- conn
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		select {
		case conn := <-conns:
			_ = conn.Close()
		default:
		}
	})
	return path, conns
}

func nextEvent(t *testing.T, events <-chan model.Event) model.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "queue closed")
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return model.Event{}
	}
}

func TestDaemon_RunDeliversEvents(t *testing.T) {
	path, conns := serveCompositor(t)

	cfg := testConfig()
	cfg.Client.SocketPath = path
	d := New(cfg, Options{Logger: discardLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	var conn net.Conn
	select {
	case conn = <-conns:
	case <-time.After(3 * time.Second):
		t.Fatal("daemon never connected")
	}

	_, err := io.WriteString(conn, "activewindow>>firefox,Mozilla Firefox\n")
	require.NoError(t, err)

	e := nextEvent(t, d.Queue().Events())
	assert.Equal(t, model.KindTitleChanged, e.Kind)
	assert.Equal(t, "Mozilla Firefox", e.Title)

	select {
	case <-d.Waker().C():
	case <-time.After(time.Second):
		t.Fatal("waker not raised")
	}

	snap := d.Cells().Snapshot()
	assert.Equal(t, "Mozilla Firefox", snap.Title)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Queue is closed once Run returns
	_, ok := <-d.Queue().Events()
	assert.False(t, ok)
	assert.Positive(t, d.Stats().LinesRead)
}

func TestDaemon_ApplyConfig(t *testing.T) {
	levelVar := new(slog.LevelVar)
	d := New(testConfig(), Options{Logger: discardLogger(), LevelVar: levelVar})

	newConfig := testConfig()
	newConfig.Log.Level = "debug"
	newConfig.Bar.Theme = "nord"

	events := d.ApplyConfig(newConfig)
	require.Len(t, events, 2)
	assert.Equal(t, model.KindReloadSettings, events[0].Kind)
	assert.Equal(t, model.KindThemeChanged, events[1].Kind)

	assert.Equal(t, slog.LevelDebug, levelVar.Level())
	assert.Same(t, newConfig, d.Config())

	assert.Equal(t, model.KindReloadSettings, nextEvent(t, d.Queue().Events()).Kind)
	assert.Equal(t, "nord", nextEvent(t, d.Queue().Events()).Theme)

	assert.True(t, d.Cells().TakeReload())
	assert.Equal(t, "nord", d.Cells().Snapshot().Theme)
}

func TestDaemon_RunWatchesConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	cfg := testConfig()
	d := New(cfg, Options{
		Logger:      discardLogger(),
		ConfigPath:  configPath,
		WatchConfig: true,
		Resolver:    hypr.StaticResolver(filepath.Join(t.TempDir(), "missing.sock")),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Give the watcher time to register the directory
	time.Sleep(200 * time.Millisecond)

	content := "[dbus]\nenabled = false\n\n[bar]\nautohide = true\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	assert.Equal(t, model.KindReloadSettings, nextEvent(t, d.Queue().Events()).Kind)
	e := nextEvent(t, d.Queue().Events())
	assert.Equal(t, model.KindAutohideChanged, e.Kind)
	assert.True(t, e.Autohide)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDaemon_RunRecordsHistory(t *testing.T) {
	path, conns := serveCompositor(t)
	historyPath := filepath.Join(t.TempDir(), "events.jsonl")

	cfg := testConfig()
	cfg.Client.SocketPath = path
	cfg.History.Enabled = true
	cfg.History.Path = historyPath
	d := New(cfg, Options{Logger: discardLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	var conn net.Conn
	select {
	case conn = <-conns:
	case <-time.After(3 * time.Second):
		t.Fatal("daemon never connected")
	}

	_, err := io.WriteString(conn, "closewindow>>80e62df0\n")
	require.NoError(t, err)
	assert.Equal(t, model.KindWindowClosed, nextEvent(t, d.Queue().Events()).Kind)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	events, skipped, err := store.Load(historyPath)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, events, 1)
	assert.Equal(t, model.KindWindowClosed, events[0].Kind)
}
