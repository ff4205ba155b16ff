// Package provider defines the values exchanged between template providers
// and the rendering engine: templates, their replacements, and the project and
// library configuration a provider is invoked with.
package provider

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidTemplate = errors.New("invalid template")

// Replacement is a single placeholder name and the value substituted for it.
type Replacement struct {
	Name  string
	Value string
}

// Replacements is an ordered set of placeholder values. Order is significant:
// values are substituted one name at a time, in slice order.
type Replacements []Replacement

// Get returns the value for name.
func (r Replacements) Get(name string) (string, bool) {
	for _, rep := range r {
		if rep.Name == name {
			return rep.Value, true
		}
	}
	return "", false
}

// Set returns a copy of r with name set to value. An existing name keeps its
// position; a new name is appended.
func (r Replacements) Set(name, value string) Replacements {
	out := make(Replacements, len(r), len(r)+1)
	copy(out, r)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Replacement{Name: name, Value: value})
}

// UnmarshalYAML decodes a YAML mapping into Replacements, keeping the key order
// of the document.
func (r *Replacements) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("replacements: expected a mapping, got %s", nodeKind(node))
	}

	out := make(Replacements, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("replacements: value for %q must be a scalar (line %d)", key.Value, value.Line)
		}
		out = out.Set(key.Value, value.Value)
	}

	*r = out
	return nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// Template is one file generation unit. Source is relative to the providing
// library's install root, Destination to the project root. Both are
// slash-separated.
type Template struct {
	name         string
	source       string
	destination  string
	replacements Replacements
}

// NewTemplate builds a template. The replacements are copied, so later changes
// to the caller's slice do not reach the template. Call Validate before use.
func NewTemplate(name, source, destination string, replacements Replacements) Template {
	return Template{
		name:         name,
		source:       source,
		destination:  destination,
		replacements: append(Replacements(nil), replacements...),
	}
}

func (t Template) Name() string        { return t.name }
func (t Template) Source() string      { return t.source }
func (t Template) Destination() string { return t.destination }

// Replacements returns a copy of the template's ordered replacements.
func (t Template) Replacements() Replacements {
	return append(Replacements(nil), t.replacements...)
}

// Validate reports whether the template can be rendered. A zero Template is
// never valid.
func (t Template) Validate() error {
	if strings.TrimSpace(t.name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidTemplate)
	}
	if err := validateRelative("source", t.source); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, t.name, err)
	}
	if err := validateRelative("destination", t.destination); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, t.name, err)
	}
	for _, rep := range t.replacements {
		if rep.Name == "" {
			return fmt.Errorf("%w: %s: replacement with empty name", ErrInvalidTemplate, t.name)
		}
	}
	return nil
}

func validateRelative(field, p string) error {
	if p == "" {
		return fmt.Errorf("%s path is empty", field)
	}
	if path.IsAbs(p) || strings.Contains(p, `\`) {
		return fmt.Errorf("%s path %q must be relative and slash-separated", field, p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%s path %q escapes its root", field, p)
	}
	return nil
}
