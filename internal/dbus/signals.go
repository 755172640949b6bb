package dbus

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/hybar/internal/publish"
)

// eventSignals returns the D-Bus signal introspection data.
func eventSignals() []introspect.Signal {
	return []introspect.Signal{
		{Name: SignalWorkspaceChanged},
		{
			Name: SignalWorkspaceUrgent,
			Args: []introspect.Arg{{Name: "id", Type: "s"}},
		},
		{
			Name: SignalFullscreenChanged,
			Args: []introspect.Arg{{Name: "fullscreen", Type: "b"}},
		},
		{
			Name: SignalTitleChanged,
			Args: []introspect.Arg{{Name: "title", Type: "s"}},
		},
		{
			Name: SignalWindowOpened,
			Args: []introspect.Arg{
				{Name: "class", Type: "s"},
				{Name: "title", Type: "s"},
			},
		},
		{
			Name: SignalWindowClosed,
			Args: []introspect.Arg{{Name: "class", Type: "s"}},
		},
		{Name: SignalReloadSettings},
		{
			Name: SignalThemeChanged,
			Args: []introspect.Arg{{Name: "theme", Type: "s"}},
		},
		{
			Name: SignalAutohideChanged,
			Args: []introspect.Arg{{Name: "autohide", Type: "b"}},
		},
	}
}

// eventMethods returns the D-Bus method introspection data.
func eventMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetState",
			Args: []introspect.Arg{
				{Name: "state", Type: "a{sv}", Direction: "out"},
			},
		},
	}
}

// stateObject is the exported object answering method calls.
type stateObject struct {
	snapshot func() publish.Snapshot
}

// GetState returns the latest shared state.
// D-Bus method: GetState() -> a{sv}
func (o *stateObject) GetState() (map[string]dbus.Variant, *dbus.Error) {
	if o.snapshot == nil {
		return map[string]dbus.Variant{}, nil
	}
	return StateVariants(o.snapshot()), nil
}

// StateVariants converts a snapshot into a D-Bus property map.
func StateVariants(s publish.Snapshot) map[string]dbus.Variant {
	state := map[string]dbus.Variant{
		"version":    dbus.MakeVariant(s.Version),
		"fullscreen": dbus.MakeVariant(s.Fullscreen),
		"title":      dbus.MakeVariant(s.Title),
		"urgent":     dbus.MakeVariant(s.Urgent),
		"theme":      dbus.MakeVariant(s.Theme),
		"autohide":   dbus.MakeVariant(s.Autohide),
	}
	if s.LastOpened != nil {
		state["last_opened_class"] = dbus.MakeVariant(s.LastOpened.Class)
		state["last_opened_title"] = dbus.MakeVariant(s.LastOpened.Title)
	}
	if s.LastClosed != "" {
		state["last_closed"] = dbus.MakeVariant(s.LastClosed)
	}
	if s.LastEventID != "" {
		state["last_event_id"] = dbus.MakeVariant(s.LastEventID)
		state["last_event_kind"] = dbus.MakeVariant(s.LastEventKind)
		state["last_event_at"] = dbus.MakeVariant(s.LastEventAt)
	}
	return state
}
