package dbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/hybar/internal/model"
)

const (
	// DBusInterface is the event interface name.
	DBusInterface = "io.github.jmylchreest.hybar.Events"
	// DBusPath is the event object path.
	DBusPath dbus.ObjectPath = "/io/github/jmylchreest/hybar"
	// DBusBusName is the default bus name to claim.
	DBusBusName = "io.github.jmylchreest.hybar"
)

// Signal member names.
const (
	SignalWorkspaceChanged  = "WorkspaceChanged"
	SignalWorkspaceUrgent   = "WorkspaceUrgent"
	SignalFullscreenChanged = "FullscreenChanged"
	SignalTitleChanged      = "TitleChanged"
	SignalWindowOpened      = "WindowOpened"
	SignalWindowClosed      = "WindowClosed"
	SignalReloadSettings    = "ReloadSettings"
	SignalThemeChanged      = "ThemeChanged"
	SignalAutohideChanged   = "AutohideChanged"
)

// ErrUnknownSignal is returned for signals that do not map to an event kind.
var ErrUnknownSignal = errors.New("unknown signal")

var signalNames = map[model.Kind]string{
	model.KindWorkspaceChanged:  SignalWorkspaceChanged,
	model.KindWorkspaceUrgent:   SignalWorkspaceUrgent,
	model.KindFullscreenChanged: SignalFullscreenChanged,
	model.KindTitleChanged:      SignalTitleChanged,
	model.KindWindowOpened:      SignalWindowOpened,
	model.KindWindowClosed:      SignalWindowClosed,
	model.KindReloadSettings:    SignalReloadSettings,
	model.KindThemeChanged:      SignalThemeChanged,
	model.KindAutohideChanged:   SignalAutohideChanged,
}

// SignalName returns the signal member name for an event kind.
func SignalName(kind model.Kind) (string, bool) {
	name, ok := signalNames[kind]
	return name, ok
}

// SignalArgs returns the member name and body for an event.
func SignalArgs(e model.Event) (string, []any, error) {
	name, ok := SignalName(e.Kind)
	if !ok {
		return "", nil, fmt.Errorf("no signal for event kind %d", int(e.Kind))
	}

	switch e.Kind {
	case model.KindWorkspaceUrgent:
		return name, []any{e.Workspace}, nil
	case model.KindFullscreenChanged:
		return name, []any{e.Fullscreen}, nil
	case model.KindTitleChanged:
		return name, []any{e.Title}, nil
	case model.KindWindowOpened:
		return name, []any{e.WindowClass, e.WindowTitle}, nil
	case model.KindWindowClosed:
		return name, []any{e.WindowClass}, nil
	case model.KindThemeChanged:
		return name, []any{e.Theme}, nil
	case model.KindAutohideChanged:
		return name, []any{e.Autohide}, nil
	default:
		return name, nil, nil
	}
}

// EventFromSignal converts a received signal into an event. member may be
// either the bare member name or the interface-qualified name.
func EventFromSignal(member string, body []any) (model.Event, error) {
	member = strings.TrimPrefix(member, DBusInterface+".")

	switch member {
	case SignalWorkspaceChanged:
		return model.WorkspaceChanged(), nil
	case SignalWorkspaceUrgent:
		id, err := stringArg(member, body, 0)
		if err != nil {
			return model.Event{}, err
		}
		return model.WorkspaceUrgent(id), nil
	case SignalFullscreenChanged:
		fullscreen, err := boolArg(member, body, 0)
		if err != nil {
			return model.Event{}, err
		}
		return model.FullscreenChanged(fullscreen), nil
	case SignalTitleChanged:
		title, err := stringArg(member, body, 0)
		if err != nil {
			return model.Event{}, err
		}
		return model.TitleChanged(title), nil
	case SignalWindowOpened:
		class, err := stringArg(member, body, 0)
		if err != nil {
			return model.Event{}, err
		}
		title, err := stringArg(member, body, 1)
		if err != nil {
			return model.Event{}, err
		}
		return model.WindowOpened(class, title), nil
	case SignalWindowClosed:
		class, err := stringArg(member, body, 0)
		if err != nil {
			return model.Event{}, err
		}
		return model.WindowClosed(class), nil
	case SignalReloadSettings:
		return model.ReloadSettings(), nil
	case SignalThemeChanged:
		theme, err := stringArg(member, body, 0)
		if err != nil {
			return model.Event{}, err
		}
		return model.ThemeChanged(theme), nil
	case SignalAutohideChanged:
		autohide, err := boolArg(member, body, 0)
		if err != nil {
			return model.Event{}, err
		}
		return model.AutohideChanged(autohide), nil
	default:
		return model.Event{}, fmt.Errorf("%w: %s", ErrUnknownSignal, member)
	}
}

func stringArg(member string, body []any, i int) (string, error) {
	if i >= len(body) {
		return "", fmt.Errorf("%s: missing argument %d", member, i)
	}
	s, ok := body[i].(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %d has type %T, want string", member, i, body[i])
	}
	return s, nil
}

func boolArg(member string, body []any, i int) (bool, error) {
	if i >= len(body) {
		return false, fmt.Errorf("%s: missing argument %d", member, i)
	}
	b, ok := body[i].(bool)
	if !ok {
		return false, fmt.Errorf("%s: argument %d has type %T, want bool", member, i, body[i])
	}
	return b, nil
}
