// Package output serializes reports to JSON, JSONL or YAML.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// DefaultIndent is the JSON indentation used for reports.
const DefaultIndent = "    "

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Writer serializes documents. Buffered formats emit on Close.
type Writer interface {
	Write(data any) error
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	indent string
}

// WithIndent sets the JSON indentation. An empty string gives compact output.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{indent: DefaultIndent}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// buffered collects documents until Close.
type buffered struct {
	items []any
}

func (b *buffered) Write(data any) error {
	b.items = append(b.items, data)
	return nil
}

// document returns the single buffered item, or all of them as a list.
func (b *buffered) document() any {
	if len(b.items) == 1 {
		return b.items[0]
	}
	return b.items
}

// JSONWriter writes one JSON document. Non-ASCII text is kept as UTF-8
// and HTML characters are not escaped.
type JSONWriter struct {
	buffered
	w      io.Writer
	indent string
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{w: w, indent: indent}
}

// Close encodes the buffered items.
func (w *JSONWriter) Close() error {
	if len(w.items) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w.w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(w.document()); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bw.Flush()
}

// JSONLWriter writes one compact JSON document per line as they arrive.
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: bw, enc: enc}
}

// Write writes a single item as a JSON line.
func (w *JSONLWriter) Write(data any) error {
	if err := w.enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON line: %w", err)
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.w.Flush()
}

// YAMLWriter writes one YAML document.
type YAMLWriter struct {
	buffered
	w io.Writer
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{w: w}
}

// Close encodes the buffered items.
func (w *YAMLWriter) Close() error {
	if len(w.items) == 0 {
		return nil
	}
	enc := yaml.NewEncoder(w.w)
	enc.SetIndent(2)
	if err := enc.Encode(w.document()); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
