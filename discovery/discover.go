package discovery

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cpcf/proforma/config"
	"github.com/cpcf/proforma/engine"
	"github.com/cpcf/proforma/provider"
)

// brokenDeclaration stands in for a declaration that failed to load, so the
// failure is reported for its library like any other provider error.
type brokenDeclaration struct {
	err error
}

func (b brokenDeclaration) Templates(provider.ProjectConfig, provider.LibraryConfig) ([]provider.Template, error) {
	return nil, b.err
}

// Discover builds the providers of a run. installed lists the project's
// libraries in order; those that pass the run's allow list and ship a
// declaration get a provider named after the library.
//
// Libraries named in the allow list are always given a ref, even when they are
// not installed or ship no declaration, so that the run reports them.
func Discover(installed []string, index engine.PackageIndex, run *config.RunConfig, logger *slog.Logger) (*provider.Registry, []provider.Ref) {
	if logger == nil {
		logger = slog.Default()
	}
	if run == nil {
		run = &config.RunConfig{}
	}
	registry := provider.NewRegistry()
	var refs []provider.Ref

	listed := make(map[string]bool, len(run.Libraries))
	for _, lib := range run.Libraries {
		listed[lib] = true
	}

	candidates := make([]string, 0, len(installed)+len(run.Libraries))
	seen := make(map[string]bool, len(installed))
	for _, lib := range installed {
		if run.Allows(lib) && !seen[lib] {
			candidates = append(candidates, lib)
			seen[lib] = true
		}
	}
	for _, lib := range run.Libraries {
		if !seen[lib] {
			candidates = append(candidates, lib)
			seen[lib] = true
		}
	}

	for _, lib := range candidates {
		value, found := locate(lib, index, logger)
		if found {
			if err := registry.Register(lib, value); err != nil {
				logger.Warn("skipping template provider", "library", lib, "error", err)
				continue
			}
		}
		if found || listed[lib] {
			refs = append(refs, provider.Ref{Library: lib, Provider: lib})
		}
	}

	logger.Debug("discovered template providers", "candidates", len(candidates), "providers", registry.Names())
	return registry, refs
}

func locate(lib string, index engine.PackageIndex, logger *slog.Logger) (provider.Provider, bool) {
	root, ok := index.InstallPath(lib)
	if !ok {
		logger.Debug("library is not installed", "library", lib)
		return nil, false
	}

	if _, err := os.Stat(filepath.Join(root, FileName)); errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}

	decl, err := LoadDeclaration(root)
	if err != nil {
		return brokenDeclaration{err: err}, true
	}
	return decl, true
}
