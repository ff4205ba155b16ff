package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cpcf/proforma/config"
	"github.com/cpcf/proforma/discovery"
	"github.com/cpcf/proforma/engine"
	"github.com/cpcf/proforma/host"
	"github.com/cpcf/proforma/postprocess"
	"github.com/cpcf/proforma/state"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Copy the templates of installed libraries into the project",
		Long: `Generate asks every installed library that ships a proforma.templates.yaml
for its templates and writes them into the project. Existing files are left
alone unless --overwrite is given.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	cmd.Flags().Bool("overwrite", false, "replace files that already exist")
	cmd.Flags().Bool("backup", false, "keep a .bak copy of overwritten files")
	cmd.Flags().Bool("atomic", false, "write through a temporary file and rename")
	cmd.Flags().Bool("format", false, "run goimports over generated Go files")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := s.logger
	sink := host.NewLogSink(logger)
	dir := s.env.ProjectDir

	run, err := config.LoadRunConfig(dir)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, run)

	modCache, err := s.env.ModuleCache()
	if err != nil {
		return err
	}
	mod, err := host.LoadModule(dir, modCache)
	if err != nil {
		// Same outcome as a project without a namespace: reported, not failed.
		sink.Notify(engine.Notice{Level: slog.LevelError, Message: "could not determine the project namespace: " + err.Error()})
		return nil
	}

	registry, refs := discovery.Discover(mod.InstalledPackages(), mod, run, logger)
	if len(refs) == 0 {
		logger.Info("did not find any installed libraries that provide templates")
		return nil
	}

	manifest, err := state.Load(dir)
	if err != nil {
		logger.Warn("starting a new manifest", "error", err)
		manifest = state.New()
	}
	runID := manifest.BeginRun()

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithOverwrite(run.Overwrite),
		engine.WithBackup(run.Backup),
		engine.WithAtomicWrites(run.Atomic),
		engine.WithRecorder(manifest),
	}
	if run.Format {
		opts = append(opts, engine.WithPostProcessor(postprocess.NewGoImports()))
	}

	processor := engine.NewProcessor(dir, sink, opts...)
	manager := engine.NewManager(config.NewFactory(mod, run), registry, mod, processor, sink,
		engine.WithManagerLogger(logger))

	summary := manager.ProcessTemplates(refs)
	if summary.Aborted {
		return nil
	}

	written := summary.Outcomes[engine.Created] + summary.Outcomes[engine.Overwritten]
	if written > 0 {
		if err := manifest.Save(dir); err != nil {
			logger.Error("failed to save manifest", "error", err)
		}
	}

	logger.Info("generation finished",
		"run_id", runID,
		"providers", registry.Len(),
		"refs", summary.Providers,
		"written", written,
		"skipped", summary.Outcomes[engine.Skipped],
		"failed", summary.Outcomes[engine.Failed]+summary.Outcomes[engine.MissingSource])
	return nil
}

// applyRunFlags lets flags given on the command line override proforma.yaml.
func applyRunFlags(cmd *cobra.Command, run *config.RunConfig) {
	flags := cmd.Flags()
	for name, target := range map[string]*bool{
		"overwrite": &run.Overwrite,
		"backup":    &run.Backup,
		"atomic":    &run.Atomic,
		"format":    &run.Format,
	} {
		if flags.Changed(name) {
			*target, _ = flags.GetBool(name)
		}
	}
}
