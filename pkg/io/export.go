package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
)

// WriteAnalysis encodes a in the given format and writes it to w.
// The output can be re-imported with [ReadAnalysis].
func WriteAnalysis(a contact.Analysis, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(a); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return nil
}

// ExportAnalysis writes a to path in the format implied by its extension.
func ExportAnalysis(a contact.Analysis, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteAnalysis(a, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
