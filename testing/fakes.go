package testing

import (
	"errors"
	"log/slog"
	"regexp"

	"github.com/cpcf/proforma/engine"
	"github.com/cpcf/proforma/provider"
)

// SinkRecorder keeps every notice it receives.
type SinkRecorder struct {
	Notices []engine.Notice
}

func (r *SinkRecorder) Notify(n engine.Notice) {
	r.Notices = append(r.Notices, n)
}

// Count returns how many notices match pattern.
func (r *SinkRecorder) Count(pattern string) int {
	re := regexp.MustCompile(pattern)
	n := 0
	for _, notice := range r.Notices {
		if re.MatchString(notice.Message) {
			n++
		}
	}
	return n
}

func (r *SinkRecorder) CountLevel(level slog.Level) int {
	n := 0
	for _, notice := range r.Notices {
		if notice.Level == level {
			n++
		}
	}
	return n
}

func (r *SinkRecorder) Messages() []string {
	out := make([]string, len(r.Notices))
	for i, n := range r.Notices {
		out[i] = n.Message
	}
	return out
}

// RenderCall is one recorded call to RenderRecorder.Render.
type RenderCall struct {
	Template    provider.Template
	InstallRoot string
}

// RenderRecorder is an engine.TemplateRenderer that records its calls and
// returns Outcome for each of them.
type RenderRecorder struct {
	Calls   []RenderCall
	Outcome engine.Outcome
}

func (r *RenderRecorder) Render(t provider.Template, installRoot string) engine.Outcome {
	r.Calls = append(r.Calls, RenderCall{Template: t, InstallRoot: installRoot})
	return r.Outcome
}

// CallsFor returns the calls made with installRoot.
func (r *RenderRecorder) CallsFor(installRoot string) int {
	n := 0
	for _, c := range r.Calls {
		if c.InstallRoot == installRoot {
			n++
		}
	}
	return n
}

// Host is an in-memory project: it answers for the project source, the
// package index and the configuration factory.
type Host struct {
	Module       string
	NamespaceErr error
	Installed    []string
	// InstallRoots maps a library to its install root. When nil every
	// library resolves to its own name.
	InstallRoots map[string]string
	Settings     map[string]map[string]any
}

var ErrNoNamespace = errors.New("no namespace")

func (h *Host) Namespace() (string, error) {
	if h.NamespaceErr != nil {
		return "", h.NamespaceErr
	}
	if h.Module == "" {
		return "", ErrNoNamespace
	}
	return h.Module, nil
}

func (h *Host) InstalledPackages() []string {
	return h.Installed
}

func (h *Host) InstallPath(library string) (string, bool) {
	if h.InstallRoots == nil {
		return library, true
	}
	root, ok := h.InstallRoots[library]
	return root, ok
}

func (h *Host) ProjectConfig() (provider.ProjectConfig, error) {
	ns, err := h.Namespace()
	if err != nil {
		return provider.ProjectConfig{}, err
	}
	return provider.NewProjectConfig(ns, h.Installed)
}

func (h *Host) LibraryConfig(library string) provider.LibraryConfig {
	return provider.NewLibraryConfig(h.Settings[library])
}

// SequenceProvider returns the next entry of Sequence on each call and counts
// its calls.
type SequenceProvider struct {
	Sequence [][]provider.Template
	Notes    []string
	Calls    int
	Project  provider.ProjectConfig
	Library  provider.LibraryConfig
}

func (p *SequenceProvider) Templates(project provider.ProjectConfig, library provider.LibraryConfig) ([]provider.Template, error) {
	p.Calls++
	p.Project, p.Library = project, library
	if len(p.Sequence) == 0 {
		return nil, nil
	}
	next := p.Sequence[0]
	p.Sequence = p.Sequence[1:]
	return next, nil
}

func (p *SequenceProvider) Messages() []string {
	return p.Notes
}
