package engine

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/cpcf/proforma/postprocess"
	"github.com/cpcf/proforma/provider"
	"github.com/cpcf/proforma/write"
)

// Outcome is the result of rendering one template.
type Outcome int

const (
	// Skipped means the destination existed and overwriting is disabled.
	Skipped Outcome = iota
	// Created means a new file was written.
	Created
	// Overwritten means an existing file was replaced.
	Overwritten
	// MissingSource means the template file was not found in the library.
	MissingSource
	// Failed means the source could not be read or the file not written.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Created:
		return "created"
	case Overwritten:
		return "overwritten"
	case MissingSource:
		return "missing-source"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Recorder is told about every file the processor writes.
type Recorder interface {
	Record(path, template string, content []byte)
}

// Processor renders templates into a project directory.
type Processor struct {
	logger         *slog.Logger
	sink           Sink
	projectRoot    string
	overwrite      bool
	backup         bool
	atomic         bool
	writer         write.Writer
	sourceFS       func(installRoot string) fs.FS
	postprocessors *postprocess.Chain
	recorder       Recorder
}

// NewProcessor returns a processor writing below projectRoot and reporting to
// sink. By default it reads sources with os.DirFS, writes with a
// write.FileWriter, never overwrites and runs no post-processors.
func NewProcessor(projectRoot string, sink Sink, opts ...Option) *Processor {
	if sink == nil {
		sink = Discard
	}
	p := &Processor{
		logger:         slog.Default(),
		sink:           sink,
		projectRoot:    projectRoot,
		writer:         write.NewFileWriter(),
		sourceFS:       os.DirFS,
		postprocessors: postprocess.NewChain(),
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render writes template t into the project, reading its source from the
// library installed at installRoot. Problems are reported to the sink and
// never abort the caller.
func (p *Processor) Render(t provider.Template, installRoot string) Outcome {
	p.logger.Debug("rendering template", "template", t.Name(), "library_root", installRoot)

	destination := filepath.Join(p.projectRoot, filepath.FromSlash(t.Destination()))
	overwriting := false
	if p.writer.Exists(destination) {
		if !p.overwrite {
			p.logger.Debug("destination exists, not overwriting", "path", destination)
			return Skipped
		}
		overwriting = true
		notify(p.sink, slog.LevelInfo, "is overwriting %s", destination)
	}

	source := path.Clean(t.Source())
	sourcePath := filepath.Join(installRoot, filepath.FromSlash(source))
	if installRoot == "" {
		notify(p.sink, slog.LevelWarn, "could not find the template file %s", sourcePath)
		return MissingSource
	}

	raw, err := fs.ReadFile(p.sourceFS(installRoot), source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			notify(p.sink, slog.LevelWarn, "could not find the template file %s", sourcePath)
			return MissingSource
		}
		notify(p.sink, slog.LevelError, "could not read the template file %s: %v", sourcePath, err)
		return Failed
	}

	content := []byte(Substitute(string(raw), t.Replacements()))

	if p.postprocessors.Len() > 0 {
		processed, err := p.postprocessors.Process(destination, content)
		if err != nil {
			// Keep the unprocessed content; formatting is best effort.
			p.logger.Warn("post-processing failed", "path", destination, "error", err)
		} else {
			content = processed
		}
	}

	err = p.writer.Write(destination, content, write.Options{
		CreateDirs: true,
		Overwrite:  p.overwrite,
		Backup:     p.backup,
		Atomic:     p.atomic,
	})
	if err != nil {
		var werr *write.Error
		if errors.As(err, &werr) && werr.Op == write.OpMkdir {
			notify(p.sink, slog.LevelError, "could not create the directory %s", werr.Path)
		} else {
			notify(p.sink, slog.LevelError, "could not create the file %s: %v", destination, err)
		}
		return Failed
	}

	notify(p.sink, slog.LevelInfo, "created the file %s", destination)
	p.logger.Debug("rendered template", "template", t.Name(), "output", destination)

	if p.recorder != nil {
		p.recorder.Record(path.Clean(t.Destination()), t.Name(), content)
	}

	if overwriting {
		return Overwritten
	}
	return Created
}
