package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the run configuration file looked up in the project root.
const FileName = "proforma.yaml"

// RunConfig is the project-level configuration of a generation run.
type RunConfig struct {
	// Overwrite allows existing project files to be replaced.
	Overwrite bool `yaml:"overwrite"`
	// Backup copies a file to <name>.bak before it is overwritten.
	Backup bool `yaml:"backup"`
	// Atomic writes through a temporary file and a rename.
	Atomic bool `yaml:"atomic"`
	// Format runs goimports over generated Go files.
	Format bool `yaml:"format"`
	// Libraries restricts generation to the listed libraries. Empty means all
	// installed libraries that ship templates.
	Libraries []string `yaml:"libraries"`
	// Config holds per-library settings, keyed by library path.
	Config map[string]map[string]any `yaml:"config"`
}

func (c *RunConfig) Validate() error {
	seen := make(map[string]bool, len(c.Libraries))
	for _, lib := range c.Libraries {
		if strings.TrimSpace(lib) == "" {
			return fmt.Errorf("libraries: empty library path")
		}
		if seen[lib] {
			return fmt.Errorf("libraries: %s listed twice", lib)
		}
		seen[lib] = true
	}
	for lib := range c.Config {
		if strings.TrimSpace(lib) == "" {
			return fmt.Errorf("config: empty library path")
		}
	}
	return nil
}

// Allows reports whether lib passes the Libraries allow list.
func (c *RunConfig) Allows(lib string) bool {
	if len(c.Libraries) == 0 {
		return true
	}
	for _, allowed := range c.Libraries {
		if allowed == lib {
			return true
		}
	}
	return false
}

// LibrarySettings returns the raw settings declared for lib, or nil.
func (c *RunConfig) LibrarySettings(lib string) map[string]any {
	if c == nil || c.Config == nil {
		return nil
	}
	return c.Config[lib]
}

// LoadRunConfig reads FileName from projectDir. A missing file yields the
// default configuration.
func LoadRunConfig(projectDir string) (*RunConfig, error) {
	path := filepath.Join(projectDir, FileName)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &RunConfig{}, nil
	}

	var cfg RunConfig
	if err := LoadYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
