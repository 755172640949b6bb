// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultRetryDelay = Duration(time.Second)
	DefaultDebounce   = Duration(50 * time.Millisecond)
	DefaultQueueSize  = 64
	DefaultLogLevel   = "info"
	DefaultBusName    = "io.github.jmylchreest.hybar"
	DefaultTheme      = "default"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "50ms", "1s", "1m30s", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Try parsing as integer (milliseconds)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '50ms', '1s', '1m30s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the hybar configuration.
// Loaded from ~/.config/hybar/config.toml
type Config struct {
	Client  ClientConfig  `toml:"client"`
	Log     LogConfig     `toml:"log"`
	DBus    DBusConfig    `toml:"dbus"`
	Bar     BarConfig     `toml:"bar"`
	History HistoryConfig `toml:"history"`
}

// ClientConfig controls the compositor event client.
type ClientConfig struct {
	SocketPath string   `toml:"socket_path"` // Empty = resolve from environment
	RetryDelay Duration `toml:"retry_delay"` // Constant delay between reconnect attempts
	Debounce   Duration `toml:"debounce"`    // Flush interval
	Subscribe  []string `toml:"subscribe"`   // Event categories
	QueueSize  int      `toml:"queue_size"`  // Consumer queue capacity
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DBusConfig controls the session bus bridge.
type DBusConfig struct {
	Enabled bool   `toml:"enabled"`
	Name    string `toml:"name"`
}

// BarConfig holds preferences owned by the bar UI. hybar only reports changes.
type BarConfig struct {
	Autohide bool   `toml:"autohide"`
	Theme    string `toml:"theme"`
}

// HistoryConfig controls the on-disk event history.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Empty = $XDG_DATA_HOME/hybar/events.jsonl
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			SocketPath: "",
			RetryDelay: DefaultRetryDelay,
			Debounce:   DefaultDebounce,
			Subscribe:  []string{"workspace", "fullscreen"},
			QueueSize:  DefaultQueueSize,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		DBus: DBusConfig{
			Enabled: true,
			Name:    DefaultBusName,
		},
		Bar: BarConfig{
			Autohide: false,
			Theme:    DefaultTheme,
		},
		History: HistoryConfig{
			Enabled: false,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "hybar", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Client.RetryDelay <= 0 {
		return fmt.Errorf("retry_delay must be positive, got %s", c.Client.RetryDelay.Duration())
	}
	if c.Client.Debounce < Duration(time.Millisecond) || c.Client.Debounce > Duration(10*time.Second) {
		return fmt.Errorf("debounce must be between 1ms and 10s, got %s", c.Client.Debounce.Duration())
	}
	if c.Client.QueueSize < 1 || c.Client.QueueSize > 65536 {
		return fmt.Errorf("queue_size must be between 1 and 65536, got %d", c.Client.QueueSize)
	}
	for _, category := range c.Client.Subscribe {
		if strings.TrimSpace(category) == "" {
			return errors.New("subscribe must not contain empty categories")
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.DBus.Enabled && c.DBus.Name == "" {
		return errors.New("dbus name must be set when dbus is enabled")
	}
	return nil
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", level)
	}
}

// SlogLevel returns the configured log level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.Log.Level)
	return level
}
