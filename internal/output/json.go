package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmylchreest/hybar/internal/model"
)

// JSONFormatter formats events as JSON, one object per line unless Pretty is set.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes each event as a JSON object.
func (f *JSONFormatter) Format(w io.Writer, events []model.Event) error {
	encoder := json.NewEncoder(w)
	if f.opts.Pretty {
		encoder.SetIndent("", "  ")
	}
	for _, e := range events {
		if err := encoder.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// waybarOutput is the custom module protocol understood by Waybar.
type waybarOutput struct {
	Text    string `json:"text"`
	Alt     string `json:"alt"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// WaybarFormatter writes events as Waybar custom module lines.
type WaybarFormatter struct {
	opts FormatterOptions
}

// NewWaybarFormatter creates a new Waybar formatter.
func NewWaybarFormatter(opts FormatterOptions) *WaybarFormatter {
	return &WaybarFormatter{opts: opts}
}

// Format writes one Waybar JSON line per event.
func (f *WaybarFormatter) Format(w io.Writer, events []model.Event) error {
	encoder := json.NewEncoder(w)
	for _, e := range events {
		if err := encoder.Encode(f.waybarLine(e)); err != nil {
			return err
		}
	}
	return nil
}

func (f *WaybarFormatter) waybarLine(e model.Event) waybarOutput {
	kind := e.Kind.String()
	detail := e.Detail()

	text := truncate(waybarText(e), f.opts.TitleMaxLen)
	if text == "" {
		text = kind
	}

	tooltip := kind
	if detail != "" {
		tooltip = fmt.Sprintf("%s: %s", kind, detail)
	}
	if f.opts.ShowTime {
		tooltip += " (" + relativeTime(e.Timestamp) + ")"
	}

	return waybarOutput{
		Text:    text,
		Alt:     kind,
		Tooltip: tooltip,
		Class:   kind,
	}
}

// waybarText returns the unquoted value shown in the bar.
func waybarText(e model.Event) string {
	switch e.Kind {
	case model.KindTitleChanged:
		return e.Title
	case model.KindWindowOpened:
		return e.WindowClass
	default:
		return e.Detail()
	}
}
