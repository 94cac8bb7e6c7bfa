package kitchen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/kitchenplan/pkg/errors"
)

// Format is a config serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported config extension: %q (must be .json, .yaml or .yml)", filepath.Ext(path))
}

// MarshalConfig serializes a config to indented JSON.
func MarshalConfig(c Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteConfig(c, &buf, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalConfig parses a JSON config.
func UnmarshalConfig(data []byte) (Config, error) {
	return ReadConfig(bytes.NewReader(data), FormatJSON)
}

// ReadConfigFile reads a config from path, choosing the format by extension.
func ReadConfigFile(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadConfig(f, format)
}

// ReadConfig decodes a config from r.
func ReadConfig(r io.Reader, format Format) (Config, error) {
	var c Config
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		if err := dec.Decode(&c); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json config")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&c); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml config")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format: %q", format)
	}
	return c, nil
}

// WriteConfigFile writes c to path in the format implied by its extension.
func WriteConfigFile(c Config, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteConfig(c, &buf, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// WriteConfig encodes c to w.
func WriteConfig(c Config, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported config format: %q", format)
}
