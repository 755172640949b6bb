package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/hybar/internal/client"
	"github.com/jmylchreest/hybar/internal/config"
	"github.com/jmylchreest/hybar/internal/dbus"
	"github.com/jmylchreest/hybar/internal/hypr"
	"github.com/jmylchreest/hybar/internal/model"
	"github.com/jmylchreest/hybar/internal/publish"
	"github.com/jmylchreest/hybar/internal/store"
)

// Options configures a Daemon.
type Options struct {
	// ConfigPath is the file watched for hot reload (empty = config.ConfigPath()).
	ConfigPath string
	// WatchConfig enables hot reload.
	WatchConfig bool
	// LevelVar, when set, is updated with the log level on every reload.
	LevelVar *slog.LevelVar
	// Resolver overrides the socket resolution derived from config.
	Resolver hypr.Resolver
	// Overrides adjusts the initial config and every reloaded config, so
	// command-line settings survive a reload.
	Overrides func(*config.Config)

	Logger *slog.Logger
}

// Daemon runs the compositor client and fans its events out to the shared
// cells, the consumer queue and, when enabled, the D-Bus bridge and the
// on-disk history.
type Daemon struct {
	opts   Options
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *config.Config

	publisher *publish.Publisher
	cells     *publish.Cells
	queue     *publish.Queue
	waker     *publish.Waker
	manager   *client.Manager
}

// New creates a Daemon from cfg (nil = defaults).
func New(cfg *config.Config, opts Options) *Daemon {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Overrides != nil {
		opts.Overrides(cfg)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Daemon{
		opts:      opts,
		logger:    logger,
		cfg:       cfg,
		publisher: publish.NewPublisher(logger),
		cells:     publish.NewCells(),
		queue:     publish.NewQueue(cfg.Client.QueueSize),
		waker:     publish.NewWaker(),
	}

	d.publisher.AddSink("cells", d.cells)
	d.publisher.AddSink("queue", d.queue)
	d.publisher.OnWake(d.waker.Wake)

	resolver := opts.Resolver
	if resolver == nil {
		if cfg.Client.SocketPath != "" {
			resolver = hypr.StaticResolver(cfg.Client.SocketPath)
		} else {
			resolver = hypr.EnvResolver(os.Getenv)
		}
	}

	d.manager = client.NewManager(d.publisher, client.Options{
		Resolver:   resolver,
		RetryDelay: cfg.Client.RetryDelay.Duration(),
		Debounce:   cfg.Client.Debounce.Duration(),
		Categories: cfg.Client.Subscribe,
		OnStateChange: func(s client.State) {
			logger.Debug("client state changed", "state", s)
		},
		Logger: logger,
	})

	return d
}

// Config returns the current configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Publisher returns the event publisher. Callers may add their own sinks.
func (d *Daemon) Publisher() *publish.Publisher {
	return d.publisher
}

// Cells returns the shared latest-value cells.
func (d *Daemon) Cells() *publish.Cells {
	return d.cells
}

// Queue returns the bounded consumer queue. It is closed when Run returns.
func (d *Daemon) Queue() *publish.Queue {
	return d.queue
}

// Events returns the consumer queue channel.
func (d *Daemon) Events() <-chan model.Event {
	return d.queue.Events()
}

// Snapshot returns a copy of the shared cells.
func (d *Daemon) Snapshot() publish.Snapshot {
	return d.cells.Snapshot()
}

// Waker returns the coalescing wake signal raised after each published batch.
func (d *Daemon) Waker() *publish.Waker {
	return d.waker
}

// Stats returns the client statistics.
func (d *Daemon) Stats() client.Stats {
	return d.manager.Stats()
}

// Run starts the D-Bus bridge and config watcher as configured, then runs the
// client until ctx is cancelled. A cancelled context is not an error.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.queue.Close()

	cfg := d.Config()

	if cfg.DBus.Enabled {
		emitter := dbus.NewEmitter(cfg.DBus.Name, d.logger)
		emitter.SetStateProvider(d.cells.Snapshot)
		if err := emitter.Start(); err != nil {
			d.logger.Warn("D-Bus bridge unavailable, continuing without it", "error", err)
		} else {
			d.publisher.AddSink("dbus", emitter)
			defer func() {
				d.publisher.RemoveSink("dbus")
				if err := emitter.Stop(); err != nil {
					d.logger.Warn("error stopping D-Bus emitter", "error", err)
				}
			}()
		}
	}

	if cfg.History.Enabled {
		history, err := d.openHistory(cfg.History.Path)
		if err != nil {
			d.logger.Warn("event history unavailable, continuing without it", "error", err)
		} else {
			d.publisher.AddSink("history", history)
			defer func() {
				d.publisher.RemoveSink("history")
				if err := history.Close(); err != nil {
					d.logger.Warn("error closing event history", "error", err)
				}
			}()
		}
	}

	if d.opts.WatchConfig {
		watcher, err := config.NewWatcher(d.opts.ConfigPath, cfg, d.logger)
		if err != nil {
			d.logger.Warn("failed to create config watcher", "error", err)
		} else {
			watcher.SetReloadCallback(func(newConfig *config.Config) {
				d.ApplyConfig(newConfig)
			})
			watcher.SetErrorCallback(func(err error) {
				d.logger.Error("config reload failed, keeping previous config", "error", err)
			})
			if err := watcher.Start(); err != nil {
				d.logger.Warn("failed to start config watcher", "error", err)
			} else {
				defer func() {
					if err := watcher.Stop(); err != nil {
						d.logger.Warn("error stopping config watcher", "error", err)
					}
				}()
			}
		}
	}

	d.logger.Info("hybar daemon started",
		"debounce", cfg.Client.Debounce.Duration(),
		"retry_delay", cfg.Client.RetryDelay.Duration(),
		"dbus", cfg.DBus.Enabled,
		"history", cfg.History.Enabled,
	)

	err := d.manager.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	d.logger.Info("hybar daemon stopped",
		"published", d.publisher.Published(),
		"dropped", d.publisher.Dropped(),
	)
	return err
}

func (d *Daemon) openHistory(path string) (*store.JSONLPersistence, error) {
	if path == "" {
		var err error
		if path, err = store.HistoryPath(); err != nil {
			return nil, err
		}
	}
	history, err := store.NewJSONLPersistence(path)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("recording event history", "path", path)
	return history, nil
}
