package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ganttsync/pkg/errors"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
)

// WriteJSON encodes v as indented JSON and writes it to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes v as YAML and writes it to w.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes v in the given format. Only the machine-readable formats
// are supported; text output is the caller's business.
func Write(w io.Writer, format string, v any) error {
	switch format {
	case pipeline.FormatJSON:
		return WriteJSON(w, v)
	case pipeline.FormatYAML:
		return WriteYAML(w, v)
	}
	return errors.New(errors.ErrCodeUnsupported, "cannot export %q (use %s or %s)", format, pipeline.FormatJSON, pipeline.FormatYAML)
}

// ExportFile writes v to path in the given format.
func ExportFile(path, format string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := Write(f, format, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
