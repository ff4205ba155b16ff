package provider

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	ErrProviderNotFound = errors.New("template provider not found")
	ErrNotProvider      = errors.New("value does not implement provider.Provider")
)

// Provider is implemented by libraries that contribute templates to the
// projects that install them.
type Provider interface {
	Templates(project ProjectConfig, library LibraryConfig) ([]Template, error)
}

// MessageProvider is optionally implemented by a Provider to pass advisory
// text to the user before its templates are rendered.
type MessageProvider interface {
	Messages() []string
}

// Func adapts a function to the Provider interface.
type Func func(project ProjectConfig, library LibraryConfig) ([]Template, error)

func (f Func) Templates(project ProjectConfig, library LibraryConfig) ([]Template, error) {
	return f(project, library)
}

// Ref binds a library to the name of the provider that serves its templates.
type Ref struct {
	Library  string
	Provider string
}

type registryEntry struct {
	value    any
	provider Provider
}

// Registry maps provider names to registered values. Conformance to Provider
// is checked when a value is registered; values that do not conform are kept
// so that lookups can tell them apart from unknown names.
type Registry struct {
	entries map[string]registryEntry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]registryEntry),
	}
}

// Register stores value under name. A value that does not implement Provider,
// or holds a nil pointer, map or func, is kept but Lookup rejects it with
// ErrNotProvider. Empty and duplicate names are errors.
func (r *Registry) Register(name string, value any) error {
	if name == "" {
		return fmt.Errorf("register provider: empty name")
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("register provider %q: already registered", name)
	}

	entry := registryEntry{value: value}
	if p, ok := value.(Provider); ok && !isNil(value) {
		entry.provider = p
	}
	r.entries[name] = entry
	return nil
}

// isNil reports whether v holds a nil pointer, map, func, slice, chan or
// interface. Such values satisfy Provider but cannot be called.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Lookup resolves name. The error wraps ErrProviderNotFound when nothing is
// registered under name and ErrNotProvider when the registered value does not
// implement Provider.
func (r *Registry) Lookup(name string) (Provider, error) {
	entry, exists := r.entries[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	if entry.provider == nil {
		return nil, fmt.Errorf("%w: %s is %T", ErrNotProvider, name, entry.value)
	}
	return entry.provider, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	return len(r.entries)
}
