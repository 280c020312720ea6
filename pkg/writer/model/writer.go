// Package model serializes the view model for external renderers.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/FTIRKit/pkg/view"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Write encodes m to w.
func Write(w io.Writer, m *view.Model, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode model as JSON: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode model as YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported model format %q", format)
	}
	return nil
}

// Read decodes a model previously written by Write.
func Read(r io.Reader, format Format) (*view.Model, error) {
	m := &view.Model{}
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(m); err != nil {
			return nil, fmt.Errorf("failed to decode JSON model: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(m); err != nil {
			return nil, fmt.Errorf("failed to decode YAML model: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported model format %q", format)
	}
	return m, nil
}
