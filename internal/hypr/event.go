package hypr

// EventType classifies a raw protocol line.
type EventType int

const (
	// EventUnrecognized is any line the client does not act on.
	EventUnrecognized EventType = iota
	// EventWorkspaceUpdated is any workspace change; the payload is ignored.
	EventWorkspaceUpdated
	// EventWorkspaceUrgent carries the urgent workspace or window id.
	EventWorkspaceUrgent
	// EventFullscreenToggled carries the fullscreen state.
	EventFullscreenToggled
	// EventActiveWindowTitle carries the focused window title.
	EventActiveWindowTitle
	// EventWindowOpened carries the class and title of an opened window.
	EventWindowOpened
	// EventWindowClosed carries the class of a closed window.
	EventWindowClosed
)

var eventTypeNames = map[EventType]string{
	EventUnrecognized:      "unrecognized",
	EventWorkspaceUpdated:  "workspace",
	EventWorkspaceUrgent:   "urgent",
	EventFullscreenToggled: "fullscreen",
	EventActiveWindowTitle: "activewindow",
	EventWindowOpened:      "openwindow",
	EventWindowClosed:      "closewindow",
}

// String returns the protocol name most closely associated with the type.
func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unrecognized"
}

// Event is a classified protocol line. Only the fields relevant to Type are set;
// every string field defaults to empty when the payload was malformed.
type Event struct {
	Type EventType

	ID          string // urgent
	Fullscreen  bool   // fullscreen
	Title       string // activewindow
	WindowClass string // openwindow, closewindow
	WindowTitle string // openwindow
}
