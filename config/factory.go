package config

import (
	"errors"
	"fmt"

	"github.com/cpcf/proforma/provider"
)

// ErrConfiguration marks a project whose configuration cannot be built.
var ErrConfiguration = errors.New("project configuration unavailable")

// ProjectSource supplies project metadata from the host.
type ProjectSource interface {
	Namespace() (string, error)
	InstalledPackages() []string
}

// Factory builds the configuration values passed to template providers.
type Factory struct {
	source ProjectSource
	run    *RunConfig
}

func NewFactory(source ProjectSource, run *RunConfig) *Factory {
	if run == nil {
		run = &RunConfig{}
	}
	return &Factory{source: source, run: run}
}

func (f *Factory) ProjectConfig() (provider.ProjectConfig, error) {
	namespace, err := f.source.Namespace()
	if err != nil {
		return provider.ProjectConfig{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	cfg, err := provider.NewProjectConfig(namespace, f.source.InstalledPackages())
	if err != nil {
		return provider.ProjectConfig{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// LibraryConfig never fails; a library without settings gets an empty config.
func (f *Factory) LibraryConfig(library string) provider.LibraryConfig {
	return provider.NewLibraryConfig(f.run.LibrarySettings(library))
}
