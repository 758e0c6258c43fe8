package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
)

// Format is a serialization format for analyses.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported file type %q (want .json or .toml)", filepath.Ext(path))
	}
}

// ReadAnalysis decodes an analysis in the given format from r and
// normalizes it. Empty input fails with INVALID_INPUT.
//
// An analysis with zero contacts decodes successfully; rejecting it is up
// to the pipeline.
func ReadAnalysis(r io.Reader, format Format) (contact.Analysis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return contact.Analysis{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read analysis")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return contact.Analysis{}, errors.New(errors.ErrCodeInvalidInput, "analysis document is empty")
	}

	var a contact.Analysis
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &a)
	case FormatTOML:
		err = toml.Unmarshal(data, &a)
	default:
		return contact.Analysis{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return contact.Analysis{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s analysis", format)
	}
	return contact.NormalizeAnalysis(a), nil
}

// ImportAnalysis reads the analysis file at path. A missing file fails with
// FILE_NOT_FOUND.
func ImportAnalysis(path string) (contact.Analysis, error) {
	format, err := FormatOf(path)
	if err != nil {
		return contact.Analysis{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return contact.Analysis{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "analysis file %s not found", path)
		}
		return contact.Analysis{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadAnalysis(f, format)
}
