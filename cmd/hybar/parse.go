package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hybar/internal/client"
	"github.com/jmylchreest/hybar/internal/hypr"
	"github.com/jmylchreest/hybar/internal/output"
)

var parseOpts struct {
	flush  bool
	format string
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Classify raw event socket lines from stdin",
	Long: `Read raw event socket lines (name>>payload) from stdin and print how
each one is classified.

With --flush, lines are aggregated as if they arrived between two
debounce ticks and the resulting outbound events are printed instead.

Example:
  socat -u UNIX-CONNECT:$XDG_RUNTIME_DIR/hypr/$HYPRLAND_INSTANCE_SIGNATURE/.socket2.sock - | hybar parse`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseOpts.flush, "flush", false,
		"Aggregate all lines and print the flushed events")
	parseCmd.Flags().StringVarP(&parseOpts.format, "format", "f", "plain",
		"Output format for --flush (plain, json, yaml, waybar)")
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseOpts.flush {
		format, err := output.ParseFormatType(parseOpts.format)
		if err != nil {
			return err
		}
		opts := output.DefaultFormatterOptions()
		opts.ShowTime = false
		return flushLines(cmd.InOrStdin(), cmd.OutOrStdout(), output.NewFormatter(format, opts))
	}
	return classifyLines(cmd.InOrStdin(), cmd.OutOrStdout())
}

// classifyLines prints one classification per input line.
func classifyLines(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, describeEvent(hypr.ParseLine(line))); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// flushLines aggregates every line into one pending state and prints the flush.
func flushLines(r io.Reader, w io.Writer, formatter output.Formatter) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending client.PendingState
	for scanner.Scan() {
		pending.Apply(hypr.ParseLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	return formatter.Format(w, pending.Flush())
}

// describeEvent renders a classified line as "type key=value ...".
func describeEvent(e hypr.Event) string {
	parts := []string{e.Type.String()}

	switch e.Type {
	case hypr.EventWorkspaceUrgent:
		parts = append(parts, fmt.Sprintf("id=%q", e.ID))
	case hypr.EventFullscreenToggled:
		parts = append(parts, fmt.Sprintf("fullscreen=%t", e.Fullscreen))
	case hypr.EventActiveWindowTitle:
		parts = append(parts, fmt.Sprintf("title=%q", e.Title))
	case hypr.EventWindowOpened:
		parts = append(parts, fmt.Sprintf("class=%q", e.WindowClass), fmt.Sprintf("title=%q", e.WindowTitle))
	case hypr.EventWindowClosed:
		parts = append(parts, fmt.Sprintf("class=%q", e.WindowClass))
	}

	return strings.Join(parts, " ")
}
