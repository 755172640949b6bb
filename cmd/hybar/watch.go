package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hybar/internal/config"
	"github.com/jmylchreest/hybar/internal/core"
	"github.com/jmylchreest/hybar/internal/daemon"
	"github.com/jmylchreest/hybar/internal/dbus"
	"github.com/jmylchreest/hybar/internal/model"
	"github.com/jmylchreest/hybar/internal/output"
)

var watchOpts struct {
	format   string
	kinds    []string
	fromDBus bool
	template string
	showID   bool
	noTime   bool
	pretty   bool
	maxLen   int
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print events as they are published",
	Long: `Print each outbound event as it is published.

By default the client runs in-process. With --dbus, events are read from
the signals of a running 'hybar daemon' instead.

Formats:
  plain    [time] kind detail (use --template for custom output)
  json     one JSON object per line
  yaml     a stream of YAML documents
  waybar   Waybar custom module JSON, one line per event

Example Waybar module:

  "custom/hybar": {
    "exec": "hybar watch --dbus --format waybar --kind title-changed",
    "return-type": "json"
  }`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, waybar)")
	watchCmd.Flags().StringSliceVarP(&watchOpts.kinds, "kind", "k", nil,
		"Only print events of these kinds (repeatable)")
	watchCmd.Flags().BoolVar(&watchOpts.fromDBus, "dbus", false,
		"Listen to a running daemon's D-Bus signals")
	watchCmd.Flags().StringVar(&watchOpts.template, "template", "",
		"Go template for plain output (e.g. '{{.Kind}} {{.Detail}}')")
	watchCmd.Flags().BoolVar(&watchOpts.showID, "id", false,
		"Include event IDs in plain output")
	watchCmd.Flags().BoolVar(&watchOpts.noTime, "no-time", false,
		"Omit relative times")
	watchCmd.Flags().BoolVar(&watchOpts.pretty, "pretty", false,
		"Indent JSON output")
	watchCmd.Flags().IntVar(&watchOpts.maxLen, "max-len", 80,
		"Truncate titles to this length (0 = unlimited)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormatType(watchOpts.format)
	if err != nil {
		return err
	}

	filter, err := core.ParseKinds(watchOpts.kinds)
	if err != nil {
		return err
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = watchOpts.template
	opts.ShowID = watchOpts.showID
	opts.ShowTime = !watchOpts.noTime
	opts.Pretty = watchOpts.pretty
	opts.TitleMaxLen = watchOpts.maxLen

	printer := &eventPrinter{
		w:         cmd.OutOrStdout(),
		formatter: output.NewFormatter(format, opts),
		filter:    filter,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchOpts.fromDBus {
		listener := dbus.NewListener(logger)
		listener.SetEventHandler(printer.print)
		err := listener.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}


	d := daemon.New(cfg, daemon.Options{
		ConfigPath:  configPath(),
		WatchConfig: true,
		Overrides:   inProcessOverrides,
		LevelVar:    levelVar,
		Logger:      logger,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range d.Events() {
			printer.print(e)
		}
	}()

	err = d.Run(ctx)
	<-done
	return err
}

// inProcessOverrides keeps an in-process client off the bus name and history
// file of a running daemon, including across config reloads.
func inProcessOverrides(c *config.Config) {
	c.DBus.Enabled = false
	c.History.Enabled = false
}

// eventPrinter writes filtered events through a formatter.
type eventPrinter struct {
	mu        sync.Mutex
	w         io.Writer
	formatter output.Formatter
	filter    map[model.Kind]bool
}

func (p *eventPrinter) print(e model.Event) {
	if p.filter != nil && !p.filter[e.Kind] {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.formatter.Format(p.w, []model.Event{e}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write event: %v\n", err)
	}
}
