// Package model defines the events hybar publishes to its consumers.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies the type of an outbound event.
type Kind int

const (
	// KindWorkspaceChanged signals that workspace state must be re-read.
	KindWorkspaceChanged Kind = iota + 1
	// KindWorkspaceUrgent signals that a workspace or window requested attention.
	KindWorkspaceUrgent
	// KindFullscreenChanged carries the latest fullscreen state.
	KindFullscreenChanged
	// KindTitleChanged carries the active window title.
	KindTitleChanged
	// KindWindowOpened carries the class and title of a newly opened window.
	KindWindowOpened
	// KindWindowClosed carries the class of a closed window.
	KindWindowClosed
	// KindReloadSettings signals that the configuration file was reloaded.
	KindReloadSettings
	// KindThemeChanged carries the new theme name.
	KindThemeChanged
	// KindAutohideChanged carries the new autohide preference.
	KindAutohideChanged
)

var kindNames = map[Kind]string{
	KindWorkspaceChanged:  "workspace-changed",
	KindWorkspaceUrgent:   "workspace-urgent",
	KindFullscreenChanged: "fullscreen-changed",
	KindTitleChanged:      "title-changed",
	KindWindowOpened:      "window-opened",
	KindWindowClosed:      "window-closed",
	KindReloadSettings:    "reload-settings",
	KindThemeChanged:      "theme-changed",
	KindAutohideChanged:   "autohide-changed",
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindWorkspaceChanged,
		KindWorkspaceUrgent,
		KindFullscreenChanged,
		KindTitleChanged,
		KindWindowOpened,
		KindWindowClosed,
		KindReloadSettings,
		KindThemeChanged,
		KindAutohideChanged,
	}
}

// String returns the kebab-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a kind name as produced by String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsWorkspace reports whether the kind requires a workspace refresh.
func (k Kind) IsWorkspace() bool {
	return k == KindWorkspaceChanged || k == KindWorkspaceUrgent
}

// Event is an immutable, already-flushed update handed to consumers.
// Only the fields relevant to Kind are populated. Encoding goes through
// eventWire; the tags below apply when decoding.
type Event struct {
	ID        string `json:"id" yaml:"id"`
	Kind      Kind   `json:"kind" yaml:"kind"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // Unix milliseconds

	Workspace   string `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	Fullscreen  bool   `json:"fullscreen,omitempty" yaml:"fullscreen,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	WindowClass string `json:"window_class,omitempty" yaml:"window_class,omitempty"`
	WindowTitle string `json:"window_title,omitempty" yaml:"window_title,omitempty"`
	Theme       string `json:"theme,omitempty" yaml:"theme,omitempty"`
	Autohide    bool   `json:"autohide,omitempty" yaml:"autohide,omitempty"`
}

// NewEvent creates an event of the given kind with a fresh ULID and timestamp.
func NewEvent(kind Kind) Event {
	now := time.Now()
	return Event{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Kind:      kind,
		Timestamp: now.UnixMilli(),
	}
}

// WorkspaceChanged creates a workspace refresh event.
func WorkspaceChanged() Event {
	return NewEvent(KindWorkspaceChanged)
}

// WorkspaceUrgent creates an urgent event for the given workspace or window id.
func WorkspaceUrgent(id string) Event {
	e := NewEvent(KindWorkspaceUrgent)
	e.Workspace = id
	return e
}

// FullscreenChanged creates a fullscreen event.
func FullscreenChanged(fullscreen bool) Event {
	e := NewEvent(KindFullscreenChanged)
	e.Fullscreen = fullscreen
	return e
}

// TitleChanged creates an active window title event. The title may be empty.
func TitleChanged(title string) Event {
	e := NewEvent(KindTitleChanged)
	e.Title = title
	return e
}

// WindowOpened creates a window opened event.
func WindowOpened(class, title string) Event {
	e := NewEvent(KindWindowOpened)
	e.WindowClass = class
	e.WindowTitle = title
	return e
}

// WindowClosed creates a window closed event.
func WindowClosed(class string) Event {
	e := NewEvent(KindWindowClosed)
	e.WindowClass = class
	return e
}

// ReloadSettings creates a settings reload event.
func ReloadSettings() Event {
	return NewEvent(KindReloadSettings)
}

// ThemeChanged creates a theme change event.
func ThemeChanged(theme string) Event {
	e := NewEvent(KindThemeChanged)
	e.Theme = theme
	return e
}

// AutohideChanged creates an autohide preference event.
func AutohideChanged(autohide bool) Event {
	e := NewEvent(KindAutohideChanged)
	e.Autohide = autohide
	return e
}

// Time returns the event timestamp as a time.Time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Detail returns a short human-readable description of the payload.
func (e Event) Detail() string {
	switch e.Kind {
	case KindWorkspaceUrgent:
		return e.Workspace
	case KindFullscreenChanged:
		return fmt.Sprintf("%t", e.Fullscreen)
	case KindTitleChanged:
		return fmt.Sprintf("%q", e.Title)
	case KindWindowOpened:
		return fmt.Sprintf("%s %q", e.WindowClass, e.WindowTitle)
	case KindWindowClosed:
		return e.WindowClass
	case KindThemeChanged:
		return e.Theme
	case KindAutohideChanged:
		return fmt.Sprintf("%t", e.Autohide)
	default:
		return ""
	}
}
