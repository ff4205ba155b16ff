package engine

import (
	"io/fs"
	"log/slog"

	"github.com/cpcf/proforma/postprocess"
)

// Option configures a Processor.
type Option func(*Processor)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithOverwrite allows existing destination files to be replaced.
func WithOverwrite(overwrite bool) Option {
	return func(p *Processor) {
		p.overwrite = overwrite
	}
}

func WithBackup(backup bool) Option {
	return func(p *Processor) {
		p.backup = backup
	}
}

func WithAtomicWrites(atomic bool) Option {
	return func(p *Processor) {
		p.atomic = atomic
	}
}

// WithSourceFS sets how a library install root is opened. The default is
// os.DirFS.
func WithSourceFS(open func(installRoot string) fs.FS) Option {
	return func(p *Processor) {
		p.sourceFS = open
	}
}

// WithPostProcessor appends a processor to the content chain.
func WithPostProcessor(processor postprocess.Processor) Option {
	return func(p *Processor) {
		p.postprocessors.Add(processor)
	}
}

func WithRecorder(r Recorder) Option {
	return func(p *Processor) {
		p.recorder = r
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}
