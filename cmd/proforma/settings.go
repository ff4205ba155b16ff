package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cpcf/proforma/config"
	"github.com/cpcf/proforma/host"
)

// settings are the environment values with command-line overrides applied.
type settings struct {
	env    *config.Env
	logger *slog.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		env.ProjectDir, _ = flags.GetString("dir")
	}
	if flags.Changed("log-level") {
		env.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		env.LogFormat, _ = flags.GetString("log-format")
	}

	level, err := config.ParseLogLevel(env.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, err := host.NewLogger(cmd.ErrOrStderr(), level, env.LogFormat)
	if err != nil {
		return nil, err
	}
	return &settings{env: env, logger: logger}, nil
}
