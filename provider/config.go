package provider

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var ErrEmptyNamespace = errors.New("project namespace is empty")

// ProjectConfig describes the consuming project. It is built once per run and
// shared read-only with every provider.
type ProjectConfig struct {
	namespace string
	installed []string
}

// NewProjectConfig returns ErrEmptyNamespace when namespace is empty.
func NewProjectConfig(namespace string, installed []string) (ProjectConfig, error) {
	if namespace == "" {
		return ProjectConfig{}, ErrEmptyNamespace
	}
	return ProjectConfig{
		namespace: namespace,
		installed: slices.Clone(installed),
	}, nil
}

// Namespace is the project's root import path.
func (c ProjectConfig) Namespace() string {
	return c.namespace
}

func (c ProjectConfig) InstalledPackages() []string {
	return slices.Clone(c.installed)
}

func (c ProjectConfig) HasPackage(name string) bool {
	return slices.Contains(c.installed, name)
}

// LibraryConfig holds the settings a project declares for one library.
type LibraryConfig struct {
	values map[string]any
}

func NewLibraryConfig(values map[string]any) LibraryConfig {
	cfg := LibraryConfig{values: make(map[string]any, len(values))}
	for k, v := range values {
		cfg.values[k] = v
	}
	return cfg
}

// Value returns the raw value for key. A missing key is not an error.
func (c LibraryConfig) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// StringValue returns the value for key formatted as a string.
func (c LibraryConfig) StringValue(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok || v == nil {
		return "", false
	}
	if s, isString := v.(string); isString {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Keys returns the configured keys in sorted order.
func (c LibraryConfig) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c LibraryConfig) Len() int {
	return len(c.values)
}
