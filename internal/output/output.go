// Package output provides output formatters for outbound events.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/hybar/internal/model"
)

// Formatter formats events for output.
type Formatter interface {
	// Format writes formatted events to the writer.
	Format(w io.Writer, events []model.Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain  FormatType = "plain"
	FormatJSON   FormatType = "json"
	FormatYAML   FormatType = "yaml"
	FormatWaybar FormatType = "waybar"
)

// FormatTypes returns every supported format in display order.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatWaybar}
}

// ParseFormatType parses a format name.
func ParseFormatType(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FormatTypes() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, must be one of: plain, json, yaml, waybar", s)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatWaybar:
		return NewWaybarFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template    string // Custom template for plain format
	ShowTime    bool   // Show relative time
	ShowID      bool   // Show event ULID
	TitleMaxLen int    // Maximum title length (0 = unlimited)
	Pretty      bool   // Indent JSON output
}

// DefaultFormatterOptions returns sensible defaults for streaming output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowTime:    true,
		TitleMaxLen: 80,
	}
}
