package hypr

import "strings"

// Separator splits the event name from its payload.
const Separator = ">>"

// Event names emitted by the compositor that the client acts on.
const (
	NameFullscreen   = "fullscreen"
	NameActiveWindow = "activewindow"
	NameUrgent       = "urgent"
	NameOpenWindow   = "openwindow"
	NameCloseWindow  = "closewindow"
)

// changeMarker identifies JSON-style IPC messages, which always describe a
// workspace or output change.
const changeMarker = `"change":`

// SplitLine splits a raw line on the first separator. ok is false when the
// line has no separator.
func SplitLine(line string) (name, payload string, ok bool) {
	name, payload, ok = strings.Cut(line, Separator)
	return strings.TrimSpace(name), payload, ok
}

// ParseLine classifies a single protocol line. It never fails: malformed
// payloads produce an event with empty fields and unknown names produce
// EventUnrecognized.
func ParseLine(line string) Event {
	line = strings.TrimRight(line, "\r\n")

	name, payload, ok := SplitLine(line)
	if !ok {
		if strings.Contains(line, changeMarker) {
			return Event{Type: EventWorkspaceUpdated}
		}
		return Event{Type: EventUnrecognized}
	}

	switch name {
	case NameFullscreen:
		return Event{Type: EventFullscreenToggled, Fullscreen: strings.Contains(payload, "1")}
	case NameActiveWindow:
		return Event{Type: EventActiveWindowTitle, Title: activeWindowTitle(payload)}
	case NameUrgent:
		return Event{Type: EventWorkspaceUrgent, ID: strings.TrimSpace(payload)}
	case NameOpenWindow:
		class, title := openWindowFields(payload)
		return Event{Type: EventWindowOpened, WindowClass: class, WindowTitle: title}
	case NameCloseWindow:
		return Event{Type: EventWindowClosed, WindowClass: payload}
	}

	if strings.Contains(name, "workspace") || strings.Contains(line, changeMarker) {
		return Event{Type: EventWorkspaceUpdated}
	}
	return Event{Type: EventUnrecognized}
}

// activeWindowTitle extracts the title from a "class,title" payload. A payload
// without a comma is treated as a bare title.
func activeWindowTitle(payload string) string {
	if _, title, found := strings.Cut(payload, ","); found {
		return NormalizeTitle(title)
	}
	return NormalizeTitle(payload)
}

// openWindowFields returns field 0 as the class and field 2 as the lower-cased
// title. Missing fields are returned empty.
func openWindowFields(payload string) (class, title string) {
	fields := strings.SplitN(payload, ",", 3)
	class = strings.TrimSpace(fields[0])
	if len(fields) < 3 {
		return class, ""
	}
	title = strings.ToLower(strings.TrimSpace(fields[2]))
	// A title may itself contain commas; SplitN keeps them in field 2.
	return class, title
}

// NormalizeTitle trims a title and maps the placeholders the compositor sends
// when nothing is focused ("", ",", " - ") to the empty string.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if strings.Trim(title, " ,-") == "" {
		return ""
	}
	return title
}
