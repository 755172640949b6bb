package model

import "encoding/json"

// eventWire is the encoded form of Event. The value a kind carries is always
// present, even when it is the zero value, so every line is self-describing.
type eventWire struct {
	ID        string `json:"id" yaml:"id"`
	Kind      Kind   `json:"kind" yaml:"kind"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`

	Workspace   string  `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	Fullscreen  *bool   `json:"fullscreen,omitempty" yaml:"fullscreen,omitempty"`
	Title       *string `json:"title,omitempty" yaml:"title,omitempty"`
	WindowClass string  `json:"window_class,omitempty" yaml:"window_class,omitempty"`
	WindowTitle string  `json:"window_title,omitempty" yaml:"window_title,omitempty"`
	Theme       string  `json:"theme,omitempty" yaml:"theme,omitempty"`
	Autohide    *bool   `json:"autohide,omitempty" yaml:"autohide,omitempty"`
}

func (e Event) wire() eventWire {
	w := eventWire{
		ID:          e.ID,
		Kind:        e.Kind,
		Timestamp:   e.Timestamp,
		Workspace:   e.Workspace,
		WindowClass: e.WindowClass,
		WindowTitle: e.WindowTitle,
		Theme:       e.Theme,
	}
	if e.Kind == KindFullscreenChanged || e.Fullscreen {
		fullscreen := e.Fullscreen
		w.Fullscreen = &fullscreen
	}
	if e.Kind == KindTitleChanged || e.Title != "" {
		title := e.Title
		w.Title = &title
	}
	if e.Kind == KindAutohideChanged || e.Autohide {
		autohide := e.Autohide
		w.Autohide = &autohide
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// MarshalYAML implements yaml.Marshaler.
func (e Event) MarshalYAML() (any, error) {
	return e.wire(), nil
}
