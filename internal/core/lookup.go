package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/hybar/internal/model"
)

// ErrAmbiguousID is returned when an ID prefix matches more than one event.
var ErrAmbiguousID = errors.New("ambiguous event id")

// LookupByID finds an event by its full ID or a unique case-insensitive
// prefix of it. Returns nil, nil if nothing matches.
func LookupByID(events []model.Event, id string) (*model.Event, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return nil, nil
	}

	var found *model.Event
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
		if strings.HasPrefix(events[i].ID, id) {
			if found != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
			}
			found = &events[i]
		}
	}
	return found, nil
}

// KindCounts tallies events per kind.
func KindCounts(events []model.Event) map[model.Kind]int {
	counts := make(map[model.Kind]int)
	for _, e := range events {
		counts[e.Kind]++
	}
	return counts
}
