// Package storage encodes the tracker document and keeps it on disk.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Format selects a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user supplied name to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Decode reads a version 1 JSON document. Malformed input yields ErrParse;
// a well formed document with any other version yields ErrUnsupportedVersion.
// Nothing is migrated.
func Decode(r io.Reader) (*model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return decodeJSON(data)
}

// DecodeFormat reads a document in the given format. YAML input is converted
// to JSON first so both paths share the same defaults and checks.
func DecodeFormat(r io.Reader, f Format) (*model.Document, error) {
	if f != FormatYAML {
		return Decode(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	converted, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return decodeJSON(converted)
}

func decodeJSON(data []byte) (*model.Document, error) {
	if !json.Valid(data) {
		var probe any
		err := json.Unmarshal(data, &probe)
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if v, ok := model.PeekVersion(data); !ok || v != model.DocumentVersion {
		return nil, ErrUnsupportedVersion
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	doc.Normalize()
	return &doc, nil
}

// Encode writes doc in format f. JSON is indented by two spaces.
func Encode(w io.Writer, doc *model.Document, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// Marshal is Encode into a byte slice.
func Marshal(doc *model.Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
