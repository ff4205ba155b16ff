// Package discovery finds the installed libraries that ship template
// declarations and turns them into providers.
//
// A library declares its templates in a proforma.templates.yaml at its root:
//
//	messages:
//	  - Register the generated handler in your router.
//	templates:
//	  - name: handler
//	    source: templates/handler.go.tmpl
//	    destination: internal/handler/handler.go
//	    requires: [github.com/go-chi/chi/v5]
//	    replacements:
//	      package: handler
//	      import: "{{namespace}}/internal/handler"
//
// Each template's replacements are the declared values in order, then the
// library settings from the project's proforma.yaml, then namespace. Declared
// values may therefore refer to {{namespace}} or to a setting by key. A
// setting with the same name as a declared replacement overrides its value.
package discovery

import (
	"fmt"
	"path/filepath"

	"github.com/cpcf/proforma/config"
	"github.com/cpcf/proforma/provider"
)

// FileName is the declaration file looked up at a library's install root.
const FileName = "proforma.templates.yaml"

// NamespaceKey is the replacement name bound to the project namespace.
const NamespaceKey = "namespace"

// DeclaredTemplate is one entry of a declaration. Requires lists packages that
// must be installed for the template to be generated.
type DeclaredTemplate struct {
	Name         string                `yaml:"name"`
	Source       string                `yaml:"source"`
	Destination  string                `yaml:"destination"`
	Requires     []string              `yaml:"requires"`
	Replacements provider.Replacements `yaml:"replacements"`
}

// Declaration is the content of a library's proforma.templates.yaml. It implements
// provider.Provider and provider.MessageProvider.
type Declaration struct {
	Notes   []string           `yaml:"messages"`
	Entries []DeclaredTemplate `yaml:"templates"`
}

// Validate accepts a declaration carrying templates, messages or both.
func (d *Declaration) Validate() error {
	if len(d.Entries) == 0 && len(d.Notes) == 0 {
		return fmt.Errorf("neither templates nor messages declared")
	}
	return nil
}

// LoadDeclaration reads the declaration of the library installed at root.
func LoadDeclaration(root string) (*Declaration, error) {
	var decl Declaration
	if err := config.LoadYAML(filepath.Join(root, FileName), &decl); err != nil {
		return nil, err
	}
	return &decl, nil
}

func (d *Declaration) Messages() []string {
	return d.Notes
}

// Templates builds the declared templates for project. Templates whose
// required packages are not installed are left out. Declarations are not
// validated here; malformed entries surface as invalid templates.
func (d *Declaration) Templates(project provider.ProjectConfig, library provider.LibraryConfig) ([]provider.Template, error) {
	templates := make([]provider.Template, 0, len(d.Entries))
	for _, decl := range d.Entries {
		if !requirementsMet(project, decl.Requires) {
			continue
		}

		reps := decl.Replacements
		for _, key := range library.Keys() {
			if v, ok := library.StringValue(key); ok {
				reps = reps.Set(key, v)
			}
		}
		reps = reps.Set(NamespaceKey, project.Namespace())

		templates = append(templates, provider.NewTemplate(decl.Name, decl.Source, decl.Destination, reps))
	}
	return templates, nil
}

func requirementsMet(project provider.ProjectConfig, requires []string) bool {
	for _, pkg := range requires {
		if !project.HasPackage(pkg) {
			return false
		}
	}
	return true
}
