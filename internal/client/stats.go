package client

import (
	"sync/atomic"
	"time"
)

// Stats are connection counters readable from any goroutine.
type Stats struct {
	State         State     `json:"state"`
	SocketPath    string    `json:"socket_path,omitempty"`
	ConnectedAt   time.Time `json:"connected_at,omitzero"`
	Connects      uint64    `json:"connects"`
	Disconnects   uint64    `json:"disconnects"`
	FailedResolve uint64    `json:"failed_resolve"`
	LinesRead     uint64    `json:"lines_read"`
	Flushes       uint64    `json:"flushes"`
	EventsFlushed uint64    `json:"events_flushed"`
}

type counters struct {
	connects      atomic.Uint64
	disconnects   atomic.Uint64
	failedResolve atomic.Uint64
	linesRead     atomic.Uint64
	flushes       atomic.Uint64
	eventsFlushed atomic.Uint64
}
