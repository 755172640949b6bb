package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/hybar/internal/model"
)

// PlainFormatter formats events as plain text, one per line.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes events as plain text.
func (f *PlainFormatter) Format(w io.Writer, events []model.Event) error {
	for i := range events {
		if err := f.formatEvent(w, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatEvent(w io.Writer, e *model.Event) error {
	if f.template != nil {
		data := templateData{
			Event:        e,
			RelativeTime: relativeTime(e.Timestamp),
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	// Default format: [time] [id] kind detail
	var sb strings.Builder

	if f.opts.ShowTime {
		sb.WriteString(fmt.Sprintf("[%s] ", relativeTime(e.Timestamp)))
	}

	if f.opts.ShowID && e.ID != "" {
		sb.WriteString(e.ID + " ")
	}

	sb.WriteString(e.Kind.String())

	if detail := truncate(e.Detail(), f.opts.TitleMaxLen); detail != "" {
		sb.WriteString(" " + detail)
	}

	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// templateData provides data for custom templates.
type templateData struct {
	*model.Event
	RelativeTime string
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"reltime":  relativeTime,
		"upper":    strings.ToUpper,
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// relativeTime returns a human-readable relative time for a unix millisecond timestamp.
func relativeTime(timestamp int64) string {
	if timestamp == 0 {
		return "unknown"
	}

	t := time.UnixMilli(timestamp)
	if time.Since(t) < time.Second {
		return "now"
	}
	return humanize.Time(t)
}
