package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hybar/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger   *slog.Logger
	levelVar = new(slog.LevelVar)
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hybar",
	Short: "Hyprland event client for status bars",
	Long: `hybar connects to the Hyprland event socket, coalesces bursts of
compositor events and republishes them for a status bar.

Events are delivered in-process, as D-Bus signals on the session bus,
or printed in plain, JSON, YAML or Waybar format.

Running hybar without a subcommand launches the interactive monitor.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Logging starts at warn so config errors are still reported
		setupLogger(slog.LevelWarn)

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogger(cfg.SlogLevel())
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/hybar/config.toml)")
}

// setupLogger configures the global slog logger. The level lives in a
// LevelVar so config reloads can change it.
func setupLogger(level slog.Level) {
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	levelVar.Set(level)

	opts := &slog.HandlerOptions{
		Level: levelVar,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// configPath returns the effective config file path.
func configPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}
