package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/hybar/internal/model"
)

// YAMLFormatter formats events as a stream of YAML documents.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes each event as its own "---" separated document, so output
// from successive calls still forms a valid stream.
func (f *YAMLFormatter) Format(w io.Writer, events []model.Event) error {
	for _, e := range events {
		data, err := yaml.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
