// Package core provides filtering, sorting, and lookup logic for recorded events.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/hybar/internal/model"
)

// FilterOptions specifies criteria for filtering events.
type FilterOptions struct {
	Since  time.Duration       // Keep events newer than now-since (0=all)
	Kinds  map[model.Kind]bool // Allowed kinds (empty=any)
	Search string              // Case-insensitive substring of the event detail
	Limit  int                 // Maximum results (0=unlimited)
}

// Filter returns the events matching opts, preserving input order.
func Filter(events []model.Event, opts FilterOptions) []model.Event {
	return filterAt(events, opts, time.Now())
}

func filterAt(events []model.Event, opts FilterOptions, now time.Time) []model.Event {
	result := make([]model.Event, 0, len(events))
	cutoff := now.Add(-opts.Since).UnixMilli()
	term := strings.ToLower(opts.Search)

	for _, e := range events {
		if opts.Since > 0 && e.Timestamp < cutoff {
			continue
		}
		if len(opts.Kinds) > 0 && !opts.Kinds[e.Kind] {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(e.Detail()), term) {
			continue
		}
		result = append(result, e)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseKinds parses a list of kind names into a set. Each entry may itself
// be comma separated.
func ParseKinds(names []string) (map[model.Kind]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds := make(map[model.Kind]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			k, err := model.ParseKind(part)
			if err != nil {
				return nil, err
			}
			kinds[k] = true
		}
	}
	return kinds, nil
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
