package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// Decoder is implemented by the YAML and TOML decoders.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a strict Decoder reading from r.
type DecoderFunc func(r io.Reader) Decoder

var decoders = map[Format]DecoderFunc{
	YAML: func(r io.Reader) Decoder {
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		return d
	},
	TOML: func(r io.Reader) Decoder {
		return toml.NewDecoder(r).DisallowUnknownFields()
	},
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: unsupported config extension %q", ErrInvalid, filepath.Ext(path))
}

// Load reads, parses and validates the outfit file at path. Relative asset
// paths in it resolve against the file's directory.
func Load(path string) (*Outfit, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	o, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	o.Dir = filepath.Dir(path)
	return o, nil
}

// Parse decodes and validates an outfit. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Outfit, error) {
	newDecoder, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalid, format)
	}
	var o Outfit
	if err := newDecoder(bytes.NewReader(data)).Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalid, format, err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Marshal encodes o in the given format.
func Marshal(o *Outfit, format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(o)
	case TOML:
		return toml.Marshal(o)
	}
	return nil, fmt.Errorf("%w: unknown format %q", ErrInvalid, format)
}
