// Package host adapts a Go module to the collaborators a generation run needs:
// the project namespace, the installed libraries and their install roots.
package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// ErrNoModule is returned when go.mod declares no module path.
var ErrNoModule = errors.New("go.mod has no module directive")

// Module is a project described by its go.mod file. Required modules are the
// installed libraries; their install roots are the replacement directories or
// the module cache.
type Module struct {
	dir      string
	modCache string
	file     *modfile.File
}

// LoadModule parses dir/go.mod. Modules are looked up in modCache.
func LoadModule(dir, modCache string) (*Module, error) {
	path := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	file, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &Module{dir: dir, modCache: modCache, file: file}, nil
}

func (m *Module) Dir() string {
	return m.dir
}

// Namespace returns the module path.
func (m *Module) Namespace() (string, error) {
	if m.file.Module == nil || m.file.Module.Mod.Path == "" {
		return "", ErrNoModule
	}
	return m.file.Module.Mod.Path, nil
}

// InstalledPackages returns the required module paths in go.mod order.
func (m *Module) InstalledPackages() []string {
	paths := make([]string, 0, len(m.file.Require))
	for _, req := range m.file.Require {
		paths = append(paths, req.Mod.Path)
	}
	return paths
}

// InstallPath resolves the directory holding library's source. A replace
// directive wins over the module cache; a replacement by another module
// version resolves in the cache.
func (m *Module) InstallPath(library string) (string, bool) {
	version, ok := m.require(library)
	if !ok {
		return "", false
	}

	target := module.Version{Path: library, Version: version}
	if rep, found := m.replacement(library, version); found {
		if rep.Version == "" {
			dir := rep.Path
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(m.dir, dir)
			}
			return filepath.Clean(dir), true
		}
		target = rep
	}

	escPath, err := module.EscapePath(target.Path)
	if err != nil {
		return "", false
	}
	escVersion, err := module.EscapeVersion(target.Version)
	if err != nil {
		return "", false
	}
	return filepath.Join(m.modCache, filepath.FromSlash(escPath)+"@"+escVersion), true
}

func (m *Module) require(path string) (string, bool) {
	for _, req := range m.file.Require {
		if req.Mod.Path == path {
			return req.Mod.Version, true
		}
	}
	return "", false
}

// replacement finds the replace directive for path@version. A directive
// naming the exact version wins over a wildcard one.
func (m *Module) replacement(path, version string) (module.Version, bool) {
	var wildcard *module.Version
	for _, rep := range m.file.Replace {
		if rep.Old.Path != path {
			continue
		}
		if rep.Old.Version == version {
			return rep.New, true
		}
		if rep.Old.Version == "" {
			newVersion := rep.New
			wildcard = &newVersion
		}
	}
	if wildcard != nil {
		return *wildcard, true
	}
	return module.Version{}, false
}
