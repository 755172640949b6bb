package publish

import (
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/hybar/internal/model"
)

// Window identifies a window by class and title.
type Window struct {
	Class string `json:"class"`
	Title string `json:"title,omitempty"`
}

// Snapshot is a consistent copy of the shared cells.
type Snapshot struct {
	Version uint64 `json:"version"`

	PendingWorkspace bool `json:"pending_workspace"`
	PendingReload    bool `json:"pending_reload"`

	Fullscreen    bool    `json:"fullscreen"`
	Title         string  `json:"title"`
	Urgent        string  `json:"urgent,omitempty"`
	LastOpened    *Window `json:"last_opened,omitempty"`
	LastClosed    string  `json:"last_closed,omitempty"`
	Theme         string  `json:"theme,omitempty"`
	Autohide      bool    `json:"autohide"`
	LastEventAt   int64   `json:"last_event_at,omitempty"`
	LastEventID   string  `json:"last_event_id,omitempty"`
	LastEventKind string  `json:"last_event_kind,omitempty"`
}

// Cells holds the latest published value of each field for consumers that
// poll instead of draining a queue. Publishing overwrites; a consumer polling
// slower than the producer only ever sees the newest value.
type Cells struct {
	version atomic.Uint64

	pendingWorkspace atomic.Bool
	pendingReload    atomic.Bool
	fullscreen       atomic.Bool

	mu            sync.Mutex
	pendingUrgent *string
	pendingTitle  *string
	snap          Snapshot
}

// NewCells creates empty shared cells.
func NewCells() *Cells {
	return &Cells{}
}

// Publish overwrites the cell associated with e.Kind.
func (c *Cells) Publish(e model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Kind {
	case model.KindWorkspaceChanged:
		c.pendingWorkspace.Store(true)
	case model.KindWorkspaceUrgent:
		id := e.Workspace
		c.pendingUrgent = &id
		c.pendingWorkspace.Store(true)
		c.snap.Urgent = id
	case model.KindFullscreenChanged:
		c.fullscreen.Store(e.Fullscreen)
		c.snap.Fullscreen = e.Fullscreen
	case model.KindTitleChanged:
		title := e.Title
		c.pendingTitle = &title
		c.snap.Title = title
	case model.KindWindowOpened:
		c.snap.LastOpened = &Window{Class: e.WindowClass, Title: e.WindowTitle}
	case model.KindWindowClosed:
		c.snap.LastClosed = e.WindowClass
	case model.KindReloadSettings:
		c.pendingReload.Store(true)
	case model.KindThemeChanged:
		c.snap.Theme = e.Theme
	case model.KindAutohideChanged:
		c.snap.Autohide = e.Autohide
	}

	c.snap.LastEventAt = e.Timestamp
	c.snap.LastEventID = e.ID
	c.snap.LastEventKind = e.Kind.String()
	c.version.Add(1)
	return nil
}

// Version increases on every publish. Pollers compare it to skip idle work.
func (c *Cells) Version() uint64 {
	return c.version.Load()
}

// TakeWorkspace reports and clears the pending workspace refresh flag.
func (c *Cells) TakeWorkspace() bool {
	return c.pendingWorkspace.Swap(false)
}

// TakeReload reports and clears the pending settings reload flag.
func (c *Cells) TakeReload() bool {
	return c.pendingReload.Swap(false)
}

// TakeUrgent returns and clears the pending urgent id.
func (c *Cells) TakeUrgent() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingUrgent == nil {
		return "", false
	}
	id := *c.pendingUrgent
	c.pendingUrgent = nil
	return id, true
}

// TakeTitle returns and clears the pending title.
func (c *Cells) TakeTitle() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingTitle == nil {
		return "", false
	}
	title := *c.pendingTitle
	c.pendingTitle = nil
	return title, true
}

// Fullscreen returns the latest fullscreen state.
func (c *Cells) Fullscreen() bool {
	return c.fullscreen.Load()
}

// Snapshot returns a copy of every cell without clearing pending flags.
func (c *Cells) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.snap
	if s.LastOpened != nil {
		w := *s.LastOpened
		s.LastOpened = &w
	}
	s.Version = c.version.Load()
	s.PendingWorkspace = c.pendingWorkspace.Load()
	s.PendingReload = c.pendingReload.Load()
	return s
}
