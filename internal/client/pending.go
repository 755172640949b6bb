package client

import (
	"github.com/jmylchreest/hybar/internal/hypr"
	"github.com/jmylchreest/hybar/internal/model"
)

type openedWindow struct {
	class string
	title string
}

// PendingState records what changed since the last flush. Every field keeps
// only the latest value observed; workspaceDirty is OR-accumulated.
// It is owned by a single goroutine and needs no locking.
type PendingState struct {
	workspaceDirty bool
	fullscreen     *bool
	title          *string
	urgentID       *string
	opened         *openedWindow
	closedClass    *string
}

// Apply folds a classified event into the pending state. It reports whether
// the event was one the aggregator tracks.
func (p *PendingState) Apply(e hypr.Event) bool {
	switch e.Type {
	case hypr.EventWorkspaceUpdated:
		p.workspaceDirty = true
	case hypr.EventWorkspaceUrgent:
		id := e.ID
		p.urgentID = &id
		p.workspaceDirty = true
	case hypr.EventFullscreenToggled:
		fs := e.Fullscreen
		p.fullscreen = &fs
	case hypr.EventActiveWindowTitle:
		title := e.Title
		p.title = &title
	case hypr.EventWindowOpened:
		p.opened = &openedWindow{class: e.WindowClass, title: e.WindowTitle}
	case hypr.EventWindowClosed:
		class := e.WindowClass
		p.closedClass = &class
	default:
		return false
	}
	return true
}

// Empty reports whether a flush would emit nothing.
func (p *PendingState) Empty() bool {
	return !p.workspaceDirty &&
		p.fullscreen == nil &&
		p.title == nil &&
		p.urgentID == nil &&
		p.opened == nil &&
		p.closedClass == nil
}

// Flush drains the pending state into outbound events, at most one per field,
// in a fixed order: workspace, fullscreen, title, urgent, opened, closed.
// It returns nil when nothing was pending.
func (p *PendingState) Flush() []model.Event {
	if p.Empty() {
		return nil
	}

	events := make([]model.Event, 0, 6)

	if p.workspaceDirty {
		events = append(events, model.WorkspaceChanged())
	}
	if p.fullscreen != nil {
		events = append(events, model.FullscreenChanged(*p.fullscreen))
		p.fullscreen = nil
	}
	if p.title != nil {
		events = append(events, model.TitleChanged(*p.title))
		p.title = nil
	}
	if p.urgentID != nil {
		events = append(events, model.WorkspaceUrgent(*p.urgentID))
		p.urgentID = nil
	}
	if p.opened != nil {
		events = append(events, model.WindowOpened(p.opened.class, p.opened.title))
		p.opened = nil
	}
	if p.closedClass != nil {
		events = append(events, model.WindowClosed(*p.closedClass))
		p.closedClass = nil
	}

	p.workspaceDirty = false
	return events
}

// Reset discards everything pending.
func (p *PendingState) Reset() {
	*p = PendingState{}
}
