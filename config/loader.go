// Package config loads the settings of a generation run: the project's
// proforma.yaml, environment overrides, and the per-run configuration values
// handed to template providers.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that check themselves after
// decoding.
type Validator interface {
	Validate() error
}

// LoadYAML decodes the YAML file at path into target and validates it when
// target implements Validator. Unknown fields are rejected.
func LoadYAML[T any](path string, target *T) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("configuration file does not exist: %s: %w", absPath, err)
		}
		return fmt.Errorf("failed to read configuration file %q: %w", absPath, err)
	}

	if err := decode(data, target); err != nil {
		return fmt.Errorf("%s: %w", absPath, err)
	}
	return nil
}

func decode[T any](data []byte, target *T) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return nil
}
