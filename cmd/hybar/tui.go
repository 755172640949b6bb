package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hybar/internal/daemon"
	"github.com/jmylchreest/hybar/internal/tui"
)

var tuiOpts struct {
	clipboard string
	maxEvents int
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive event monitor",
	Long: `Launch the interactive terminal monitor.

The monitor runs the client in-process and provides:
  - Live connection state and counters
  - The latest title, fullscreen, urgent, theme and autohide values
  - A scrollable event log with search and detail view
  - Copy to clipboard support

Key bindings:
  j/k, ↑/↓    Navigate log
  enter       View event details
  c           Copy event as JSON
  s           Copy event detail
  C / alt+c   Copy visible log as JSON / YAML
  /           Search log
  p           Pause/resume the log
  x           Clear the log
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiOpts.clipboard, "clipboard", "",
		"Clipboard command reading stdin (default: system clipboard)")
	tuiCmd.Flags().IntVar(&tuiOpts.maxEvents, "max-events", tui.DefaultMaxEvents,
		"Number of events kept in the log")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The alternate screen owns the terminal; client logs would corrupt it
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	d := daemon.New(cfg, daemon.Options{
		ConfigPath:  configPath(),
		WatchConfig: true,
		Overrides:   inProcessOverrides,
		Logger:      quiet,
	})

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	err := tui.Run(ctx, tui.RunOptions{
		Source:           d,
		ClipboardCommand: tuiOpts.clipboard,
		MaxEvents:        tuiOpts.maxEvents,
	})
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}

	cancel()
	if clientErr := <-runErr; clientErr != nil && err == nil {
		err = clientErr
	}
	return err
}
