// Package output serializes extraction results for the CLI.
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

// Writer serializes one value to its output.
type Writer interface {
	Write(data any) error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON, "":
		return &jsonWriter{w: w}, nil
	case FormatJSONL:
		return &jsonlWriter{w: w}, nil
	case FormatYAML:
		return &yamlWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonWriter struct {
	w io.Writer
}

func (j *jsonWriter) Write(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(j.w, string(out))
	return err
}

// jsonlWriter emits newline-delimited JSON, one value per Write.
type jsonlWriter struct {
	w io.Writer
}

func (j *jsonlWriter) Write(data any) error {
	out, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(j.w, string(out))
	return err
}

type yamlWriter struct {
	w io.Writer
}

func (y *yamlWriter) Write(data any) error {
	bw := bufio.NewWriter(y.w)
	enc := yaml.NewEncoder(bw)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return bw.Flush()
}
