// ABOUTME: Board document codecs for JSON, YAML and TOML
// ABOUTME: Decoding normalizes collections, fills missing item ids and validates

package boardio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/2389/homarr-board/internal/board"
)

// ErrUnknownFormat is returned for an unsupported document format.
var ErrUnknownFormat = errors.New("unknown board format")

// Format is a board document encoding.
type Format string

// Supported formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat converts a format name. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// ContentType returns the MIME type of a format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

// Encode writes cfg to w.
func Encode(w io.Writer, cfg *board.Config, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Decode reads a board document from r. Items without an id get a fresh one.
// The result has non-nil collections and is validated.
func Decode(r io.Reader, f Format) (*board.Config, error) {
	cfg, err := decodeRaw(r, f)
	if err != nil {
		return nil, err
	}
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeFor reads a document destined for the named board. A document without
// a name takes that name.
func DecodeFor(r io.Reader, f Format, name string) (*board.Config, error) {
	cfg, err := decodeRaw(r, f)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeRaw(r io.Reader, f Format) (*board.Config, error) {
	var cfg board.Config
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decoding json board: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decoding yaml board: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decoding toml board: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if f != FormatJSON {
		if err := jsonProperties(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// jsonProperties rewrites widget properties into the values JSON decoding
// yields (float64 numbers, []any, map[string]any), the form the stores read
// back.
func jsonProperties(cfg *board.Config) error {
	for i := range cfg.Widgets {
		props := cfg.Widgets[i].Properties
		if props == nil {
			continue
		}
		data, err := json.Marshal(props)
		if err != nil {
			return fmt.Errorf("widget %q properties: %w", cfg.Widgets[i].ID, err)
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("widget %q properties: %w", cfg.Widgets[i].ID, err)
		}
		cfg.Widgets[i].Properties = out
	}
	return nil
}

func normalize(cfg *board.Config) {
	if cfg.Apps == nil {
		cfg.Apps = []board.App{}
	}
	if cfg.Widgets == nil {
		cfg.Widgets = []board.Widget{}
	}
	for i := range cfg.Apps {
		if cfg.Apps[i].ID == "" {
			cfg.Apps[i].ID = uuid.NewString()
		}
	}
	for i := range cfg.Widgets {
		if cfg.Widgets[i].ID == "" {
			cfg.Widgets[i].ID = uuid.NewString()
		}
	}
}
