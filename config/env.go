package config

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Env holds the settings read from the process environment.
type Env struct {
	ProjectDir string `env:"PROFORMA_DIR" envDefault:"."`
	LogLevel   string `env:"PROFORMA_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"PROFORMA_LOG_FORMAT" envDefault:"text"`

	// Module cache lookup, mirroring the go command.
	ModCache string `env:"GOMODCACHE"`
	GoPath   string `env:"GOPATH"`
}

// LoadEnv parses and validates the environment.
func LoadEnv() (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

func (e *Env) Validate() error {
	if _, err := ParseLogLevel(e.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(e.LogFormat) {
	case "text", "json", "":
	default:
		return fmt.Errorf("log format must be text or json (got %q)", e.LogFormat)
	}
	return nil
}

// goEnv asks the go command for a setting, which also covers values stored
// with "go env -w".
var goEnv = func(key string) (string, error) {
	out, err := exec.Command("go", "env", key).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ModuleCache returns the directory holding downloaded modules: GOMODCACHE,
// else what "go env GOMODCACHE" reports, else the first GOPATH entry's
// pkg/mod, else $HOME/go/pkg/mod.
func (e *Env) ModuleCache() (string, error) {
	if e.ModCache != "" {
		return e.ModCache, nil
	}
	if cache, err := goEnv("GOMODCACHE"); err == nil && cache != "" {
		return cache, nil
	}
	if e.GoPath != "" {
		first := filepath.SplitList(e.GoPath)[0]
		return filepath.Join(first, "pkg", "mod"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate module cache: %w", err)
	}
	return filepath.Join(home, "go", "pkg", "mod"), nil
}

// ParseLogLevel maps a level name to its slog level. Empty means info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log level must be one of: debug, info, warn, error (got %q)", level)
	}
}
