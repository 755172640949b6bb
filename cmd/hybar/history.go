package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hybar/internal/core"
	"github.com/jmylchreest/hybar/internal/model"
	"github.com/jmylchreest/hybar/internal/output"
	"github.com/jmylchreest/hybar/internal/store"
)

var historyOpts struct {
	file   string
	format string
	kinds  []string
	since  string
	search string
	limit  int
	sort   string
	order  string
	pretty bool
	showID bool
}

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the recorded event history",
	Long: `Print events recorded by a daemon with [history] enabled.

Examples:
  # Title changes from the last hour
  hybar history --kind title-changed --since 1h

  # The 20 most recent events as JSON
  hybar history --limit 20 --format json`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single recorded event",
	Long:  `Show a recorded event by its ID or a unique prefix of it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the recorded event history",
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old events from the history",
	Long: `Remove old events from the history file.

Stop the daemon first: it keeps the file open for appending.

Examples:
  # Remove events older than 7 days
  hybar history prune --older-than 7d

  # Keep only the 1000 most recent events
  hybar history prune --keep 1000

  # Preview what would be removed
  hybar history prune --older-than 48h --dry-run`,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.PersistentFlags().StringVar(&historyOpts.file, "file", "",
		"History file (default: [history] path or ~/.local/share/hybar/events.jsonl)")
	historyCmd.PersistentFlags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, waybar)")
	historyCmd.PersistentFlags().BoolVar(&historyOpts.pretty, "pretty", false,
		"Indent JSON output")

	historyCmd.Flags().StringSliceVarP(&historyOpts.kinds, "kind", "k", nil,
		"Only show events of these kinds (repeatable or comma separated)")
	historyCmd.Flags().StringVarP(&historyOpts.since, "since", "s", "0",
		"Only show events newer than this (e.g. 30m, 48h, 7d, 1w; 0 = all)")
	historyCmd.Flags().StringVar(&historyOpts.search, "search", "",
		"Only show events whose detail contains this text")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of events (0 = unlimited)")
	historyCmd.Flags().StringVar(&historyOpts.sort, "sort", "timestamp",
		"Sort field (timestamp, kind)")
	historyCmd.Flags().StringVar(&historyOpts.order, "order", "desc",
		"Sort order (asc, desc)")
	historyCmd.Flags().BoolVar(&historyOpts.showID, "id", true,
		"Include event IDs in plain output")

	historyPruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove events older than this duration (e.g. 48h, 7d, 1w)")
	historyPruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent events (0 = unlimited)")
	historyPruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without removing it")
}

// historyPath resolves the history file from the flag, the config or the
// data directory, in that order.
func historyPath() (string, error) {
	if historyOpts.file != "" {
		return historyOpts.file, nil
	}
	if cfg != nil && cfg.History.Path != "" {
		return cfg.History.Path, nil
	}
	return store.HistoryPath()
}

func loadHistory() (string, []model.Event, error) {
	path, err := historyPath()
	if err != nil {
		return "", nil, err
	}
	events, skipped, err := store.Load(path)
	if err != nil {
		return path, nil, fmt.Errorf("failed to load history: %w", err)
	}
	if skipped > 0 {
		logger.Warn("skipped malformed history lines", "path", path, "count", skipped)
	}
	return path, events, nil
}

func historyFormatter() (output.Formatter, error) {
	format, err := output.ParseFormatType(historyOpts.format)
	if err != nil {
		return nil, err
	}
	opts := output.DefaultFormatterOptions()
	opts.Pretty = historyOpts.pretty
	opts.ShowID = historyOpts.showID
	return output.NewFormatter(format, opts), nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	formatter, err := historyFormatter()
	if err != nil {
		return err
	}

	since, err := core.ParseDuration(historyOpts.since)
	if err != nil {
		return err
	}
	kinds, err := core.ParseKinds(historyOpts.kinds)
	if err != nil {
		return err
	}

	path, events, err := loadHistory()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		logger.Info("no recorded events", "path", path)
		return nil
	}

	core.Sort(events, core.SortOptions{
		Field: core.ParseSortField(historyOpts.sort),
		Order: core.ParseSortOrder(historyOpts.order),
	})
	events = core.Filter(events, core.FilterOptions{
		Since:  since,
		Kinds:  kinds,
		Search: historyOpts.search,
		Limit:  historyOpts.limit,
	})

	return formatter.Format(cmd.OutOrStdout(), events)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	formatter, err := historyFormatter()
	if err != nil {
		return err
	}

	_, events, err := loadHistory()
	if err != nil {
		return err
	}

	e, err := core.LookupByID(events, args[0])
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("no event with id %q", args[0])
	}
	return formatter.Format(cmd.OutOrStdout(), []model.Event{*e})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	path, events, err := loadHistory()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File:   %s\n", path)
	fmt.Fprintf(w, "Events: %s\n", humanize.Comma(int64(len(events))))
	if len(events) == 0 {
		return nil
	}

	core.Sort(events, core.SortOptions{Field: core.SortByTimestamp, Order: core.SortAsc})
	fmt.Fprintf(w, "Oldest: %s\n", humanize.Time(events[0].Time()))
	fmt.Fprintf(w, "Newest: %s\n", humanize.Time(events[len(events)-1].Time()))

	counts := core.KindCounts(events)
	fmt.Fprintln(w)
	for _, k := range model.Kinds() {
		if counts[k] > 0 {
			fmt.Fprintf(w, "  %-20s %s\n", k, humanize.Comma(int64(counts[k])))
		}
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if pruneOpts.olderThan == "" && pruneOpts.keep == 0 {
		return errors.New("specify --older-than or --keep")
	}

	var olderThan time.Duration
	if pruneOpts.olderThan != "" {
		var err error
		if olderThan, err = core.ParseDuration(pruneOpts.olderThan); err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
	}

	path, events, err := loadHistory()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	keep, removed := selectPrune(events, olderThan, pruneOpts.keep, time.Now())
	if len(removed) == 0 {
		fmt.Fprintln(w, "No events to remove")
		return nil
	}

	if pruneOpts.dryRun {
		fmt.Fprintf(w, "Would remove %d event(s), keeping %d\n", len(removed), len(keep))
		return nil
	}

	history, err := store.NewJSONLPersistence(path)
	if err != nil {
		return err
	}
	if err := history.Rewrite(keep); err != nil {
		_ = history.Close()
		return fmt.Errorf("failed to rewrite history: %w", err)
	}
	if err := history.Close(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Removed %d event(s), kept %d\n", len(removed), len(keep))
	return nil
}

// selectPrune splits events into those kept and those removed. Kept events
// are returned oldest first so the rewritten file stays chronological.
func selectPrune(events []model.Event, olderThan time.Duration, keepN int, now time.Time) (keep, removed []model.Event) {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	core.Sort(sorted, core.SortOptions{Field: core.SortByTimestamp, Order: core.SortDesc})

	cutoff := now.Add(-olderThan).UnixMilli()
	for i, e := range sorted {
		if olderThan > 0 && e.Timestamp < cutoff {
			removed = append(removed, e)
			continue
		}
		if keepN > 0 && i >= keepN {
			removed = append(removed, e)
			continue
		}
		keep = append(keep, e)
	}

	core.Sort(keep, core.SortOptions{Field: core.SortByTimestamp, Order: core.SortAsc})
	return keep, removed
}
