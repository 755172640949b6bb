package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hybar/internal/config"
	"github.com/jmylchreest/hybar/internal/daemon"
)

var daemonOpts struct {
	noDBus    bool
	noWatch   bool
	logEvents bool
	history   bool
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the event client headless",
	Long: `Run the compositor event client in the foreground without a UI.

Events are emitted as signals on the session bus under
io.github.jmylchreest.hybar.Events at /io/github/jmylchreest/hybar.
The current state is available through the GetState method.

The config file is watched and reloaded on change. Theme and autohide
changes are announced as events; client settings apply on restart.

With [history] enabled (or --history) every event is appended to a JSONL
file that 'hybar history' can query.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().BoolVar(&daemonOpts.noDBus, "no-dbus", false,
		"Do not publish events on the session bus")
	daemonCmd.Flags().BoolVar(&daemonOpts.noWatch, "no-watch", false,
		"Do not reload the config file on change")
	daemonCmd.Flags().BoolVar(&daemonOpts.logEvents, "log-events", true,
		"Log every published event at info level")
	daemonCmd.Flags().BoolVar(&daemonOpts.history, "history", false,
		"Record events to the history file")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting hybar daemon", "version", version, "config", configPath())

	d := daemon.New(cfg, daemon.Options{
		ConfigPath:  configPath(),
		WatchConfig: !daemonOpts.noWatch,
		LevelVar:    levelVar,
		Overrides:   daemonOverrides,
		Logger:      logger,
	})

	// Drain the consumer queue so it never fills while headless
	go func() {
		for e := range d.Events() {
			if daemonOpts.logEvents {
				logger.Info("event", "kind", e.Kind, "detail", e.Detail(), "id", e.ID)
			}
		}
	}()

	return d.Run(ctx)
}

// daemonOverrides applies the command-line flags on top of the config file.
func daemonOverrides(c *config.Config) {
	if daemonOpts.noDBus {
		c.DBus.Enabled = false
	}
	if daemonOpts.history {
		c.History.Enabled = true
	}
}
