package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/hybar/internal/model"
)

// SortField specifies the field to sort by.
type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByKind      SortField = "kind"
)

// SortOrder specifies the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// Sort sorts events in place. Ties keep their recorded order.
func Sort(events []model.Event, opts SortOptions) {
	if len(events) == 0 {
		return
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if opts.Field == SortByKind && a.Kind != b.Kind {
			if opts.Order == SortDesc {
				return a.Kind > b.Kind
			}
			return a.Kind < b.Kind
		}
		if a.Timestamp == b.Timestamp {
			return false
		}
		if opts.Order == SortDesc {
			return a.Timestamp > b.Timestamp
		}
		return a.Timestamp < b.Timestamp
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kind", "k":
		return SortByKind
	default:
		return SortByTimestamp
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc
	default:
		return SortDesc
	}
}
