package daemon

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/hybar/internal/config"
	"github.com/jmylchreest/hybar/internal/model"
)

func kinds(events []model.Event) []model.Kind {
	out := make([]model.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestReloadEvents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   []model.Kind
	}{
		{
			name:   "no visible change",
			mutate: func(c *config.Config) {},
			want:   []model.Kind{model.KindReloadSettings},
		},
		{
			name:   "theme",
			mutate: func(c *config.Config) { c.Bar.Theme = "dark" },
			want:   []model.Kind{model.KindReloadSettings, model.KindThemeChanged},
		},
		{
			name:   "autohide",
			mutate: func(c *config.Config) { c.Bar.Autohide = true },
			want:   []model.Kind{model.KindReloadSettings, model.KindAutohideChanged},
		},
		{
			name: "both",
			mutate: func(c *config.Config) {
				c.Bar.Theme = "dark"
				c.Bar.Autohide = true
			},
			want: []model.Kind{model.KindReloadSettings, model.KindThemeChanged, model.KindAutohideChanged},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldConfig := config.DefaultConfig()
			newConfig := config.DefaultConfig()
			tt.mutate(newConfig)

			assert.Equal(t, tt.want, kinds(ReloadEvents(oldConfig, newConfig)))
		})
	}
}

func TestReloadEvents_NoPrevious(t *testing.T) {
	events := ReloadEvents(nil, config.DefaultConfig())
	assert.Equal(t, []model.Kind{
		model.KindReloadSettings,
		model.KindThemeChanged,
		model.KindAutohideChanged,
	}, kinds(events))
}

func TestRestartRequired(t *testing.T) {
	oldConfig := config.DefaultConfig()
	newConfig := config.DefaultConfig()
	assert.Empty(t, RestartRequired(oldConfig, newConfig))

	newConfig.Client.Debounce = config.Duration(100 * time.Millisecond)
	newConfig.Client.Subscribe = []string{"workspace"}
	newConfig.DBus.Enabled = false
	newConfig.History.Enabled = true
	newConfig.Bar.Theme = "dark"

	assert.Equal(t, []string{"client.debounce", "client.subscribe", "dbus", "history"}, RestartRequired(oldConfig, newConfig))
	assert.Nil(t, RestartRequired(nil, newConfig))
}

func TestApplyConfig_KeepsOverridesAcrossReload(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	cfg := config.DefaultConfig()
	d := New(cfg, Options{
		Logger: logger,
		Overrides: func(c *config.Config) {
			c.DBus.Enabled = false
			c.History.Enabled = false
		},
	})
	assert.False(t, d.Config().DBus.Enabled)

	// The file on disk still has the defaults
	onDisk := config.DefaultConfig()
	onDisk.History.Enabled = true
	d.ApplyConfig(onDisk)

	assert.False(t, d.Config().DBus.Enabled)
	assert.False(t, d.Config().History.Enabled)
	assert.NotContains(t, logs.String(), "only apply after restart")

	changed := config.DefaultConfig()
	changed.Client.QueueSize = 8
	d.ApplyConfig(changed)

	assert.Contains(t, logs.String(), "only apply after restart")
	assert.Contains(t, logs.String(), "client.queue_size")
	assert.NotContains(t, logs.String(), "dbus")
}
