package daemon

import (
	"slices"

	"github.com/jmylchreest/hybar/internal/config"
	"github.com/jmylchreest/hybar/internal/model"
)

// ApplyConfig swaps in a reloaded configuration, updates the log level and
// publishes the resulting settings events. Options.Overrides is applied to
// newConfig first. It returns the published events.
func (d *Daemon) ApplyConfig(newConfig *config.Config) []model.Event {
	if d.opts.Overrides != nil {
		d.opts.Overrides(newConfig)
	}

	d.mu.Lock()
	oldConfig := d.cfg
	d.cfg = newConfig
	d.mu.Unlock()

	if d.opts.LevelVar != nil {
		d.opts.LevelVar.Set(newConfig.SlogLevel())
	}

	if changed := RestartRequired(oldConfig, newConfig); len(changed) > 0 {
		d.logger.Warn("settings changed that only apply after restart", "settings", changed)
	}

	events := ReloadEvents(oldConfig, newConfig)
	d.publisher.Publish(events...)

	d.logger.Info("applied reloaded config", "events", len(events))
	return events
}

// ReloadEvents returns the events announcing a config reload: always a
// settings reload, followed by theme and autohide changes when they differ.
func ReloadEvents(oldConfig, newConfig *config.Config) []model.Event {
	events := []model.Event{model.ReloadSettings()}

	if oldConfig == nil || oldConfig.Bar.Theme != newConfig.Bar.Theme {
		events = append(events, model.ThemeChanged(newConfig.Bar.Theme))
	}
	if oldConfig == nil || oldConfig.Bar.Autohide != newConfig.Bar.Autohide {
		events = append(events, model.AutohideChanged(newConfig.Bar.Autohide))
	}

	return events
}

// RestartRequired lists settings that differ but are only read at startup.
func RestartRequired(oldConfig, newConfig *config.Config) []string {
	if oldConfig == nil {
		return nil
	}

	var changed []string
	if oldConfig.Client.SocketPath != newConfig.Client.SocketPath {
		changed = append(changed, "client.socket_path")
	}
	if oldConfig.Client.RetryDelay != newConfig.Client.RetryDelay {
		changed = append(changed, "client.retry_delay")
	}
	if oldConfig.Client.Debounce != newConfig.Client.Debounce {
		changed = append(changed, "client.debounce")
	}
	if !slices.Equal(oldConfig.Client.Subscribe, newConfig.Client.Subscribe) {
		changed = append(changed, "client.subscribe")
	}
	if oldConfig.Client.QueueSize != newConfig.Client.QueueSize {
		changed = append(changed, "client.queue_size")
	}
	if oldConfig.DBus != newConfig.DBus {
		changed = append(changed, "dbus")
	}
	if oldConfig.History != newConfig.History {
		changed = append(changed, "history")
	}
	return changed
}
