package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay collapses the burst of events editors produce on save.
const DefaultSettleDelay = 100 * time.Millisecond

// Watcher watches the config file and reloads it when it changes.
// Only configurations that pass validation are handed to the reload callback.
type Watcher struct {
	mu      sync.Mutex
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	path        string
	settleDelay time.Duration
	current     *Config

	onReload func(newConfig *Config)
	onError  func(err error)

	done    chan struct{}
	stopped chan struct{}
	running bool
}

// NewWatcher creates a Watcher for the config file at path (empty = ConfigPath()).
func NewWatcher(path string, current *Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = ConfigPath()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:      logger,
		watcher:     watcher,
		path:        path,
		settleDelay: DefaultSettleDelay,
		current:     current,
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}, nil
}

// SetSettleDelay sets how long the watcher waits after the last file event
// before reloading.
func (w *Watcher) SetSettleDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settleDelay = d
}

// SetReloadCallback sets the callback invoked with each valid new config.
func (w *Watcher) SetReloadCallback(callback func(newConfig *Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback invoked when a changed config fails to load.
func (w *Watcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Current returns the last valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching. The config directory is created if missing.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory containing the file (more reliable for atomic saves)
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.setRunning(false)
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		w.setRunning(false)
		return err
	}

	go w.watch()

	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// Stop stops watching and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.stopped
	w.logger.Debug("config watcher stopped")
	return err
}

func (w *Watcher) setRunning(running bool) {
	w.mu.Lock()
	w.running = running
	w.mu.Unlock()
}

func (w *Watcher) watch() {
	defer close(w.stopped)

	filename := filepath.Base(w.path)
	var settle *time.Timer
	var settleC <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.mu.Lock()
			delay := w.settleDelay
			w.mu.Unlock()

			if settle == nil {
				settle = time.NewTimer(delay)
			} else {
				settle.Reset(delay)
			}
			settleC = settle.C

		case <-settleC:
			settleC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// reload loads and validates the config file and notifies callbacks.
func (w *Watcher) reload() {
	w.logger.Debug("config file changed", "path", w.path)

	newConfig, err := LoadConfig(w.path)

	w.mu.Lock()
	onReload := w.onReload
	onError := w.onError
	if err == nil {
		w.current = newConfig
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.logger.Info("config reloaded successfully")
	if onReload != nil {
		onReload(newConfig)
	}
}
