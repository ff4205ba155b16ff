// Package engine renders the templates that installed libraries provide into
// the project that installs them.
//
// A Manager walks the provider references of a run, asks each provider for its
// templates and hands every valid template to a Processor. Failures are
// reported as notices and never stop the run for the remaining providers.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cpcf/proforma/provider"
)

// PackageIndex locates installed libraries.
type PackageIndex interface {
	InstallPath(library string) (string, bool)
}

// ConfigFactory builds the configuration handed to providers.
type ConfigFactory interface {
	ProjectConfig() (provider.ProjectConfig, error)
	LibraryConfig(library string) provider.LibraryConfig
}

// TemplateRenderer renders one template from a library install root.
type TemplateRenderer interface {
	Render(t provider.Template, installRoot string) Outcome
}

// Summary counts what happened during a run.
type Summary struct {
	// Aborted is set when the project configuration could not be built and
	// no provider was invoked.
	Aborted   bool
	Providers int
	Invoked   int
	Rejected  int
	Invalid   int
	Outcomes  map[Outcome]int
}

// Rendered returns the number of templates handed to the renderer.
func (s Summary) Rendered() int {
	n := 0
	for _, count := range s.Outcomes {
		n += count
	}
	return n
}

// Manager runs the template providers of a project. It is not safe for
// concurrent use.
type Manager struct {
	logger   *slog.Logger
	sink     Sink
	configs  ConfigFactory
	registry *provider.Registry
	index    PackageIndex
	renderer TemplateRenderer
}

// NewManager wires a manager to its collaborators. A nil sink discards
// notices.
func NewManager(configs ConfigFactory, registry *provider.Registry, index PackageIndex, renderer TemplateRenderer, sink Sink, opts ...ManagerOption) *Manager {
	if sink == nil {
		sink = Discard
	}
	m := &Manager{
		logger:   slog.Default(),
		sink:     sink,
		configs:  configs,
		registry: registry,
		index:    index,
		renderer: renderer,
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProcessTemplates runs every provider in refs, in order.
func (m *Manager) ProcessTemplates(refs []provider.Ref) Summary {
	summary := Summary{Outcomes: make(map[Outcome]int)}

	project, err := m.configs.ProjectConfig()
	if err != nil {
		m.logger.Debug("project configuration failed", "error", err)
		notify(m.sink, slog.LevelError, "could not determine the project namespace: %v", err)
		summary.Aborted = true
		return summary
	}

	for _, ref := range refs {
		summary.Providers++
		m.processProvider(project, ref, &summary)
	}

	m.logger.Debug("processed template providers",
		"providers", summary.Providers,
		"invoked", summary.Invoked,
		"rendered", summary.Rendered())
	return summary
}

func (m *Manager) processProvider(project provider.ProjectConfig, ref provider.Ref, summary *Summary) {
	p, err := m.registry.Lookup(ref.Provider)
	switch {
	case errors.Is(err, provider.ErrProviderNotFound):
		notify(m.sink, slog.LevelWarn, "could not find the template provider %s for %s", ref.Provider, ref.Library)
		summary.Rejected++
		return
	case err != nil:
		notify(m.sink, slog.LevelWarn, "could not use the template provider %s for %s as it does not implement provider.Provider", ref.Provider, ref.Library)
		summary.Rejected++
		return
	}

	library := m.configs.LibraryConfig(ref.Library)
	m.logger.Debug("invoking template provider", "provider", ref.Provider, "library", ref.Library, "settings", library.Len())
	templates, messages, err := m.invoke(ref, p, project, library)
	summary.Invoked++
	m.surfaceMessages(ref.Library, messages)

	if err != nil {
		notify(m.sink, slog.LevelWarn, "the template provider %s failed for %s: %v", ref.Provider, ref.Library, err)
		return
	}
	if len(templates) == 0 {
		return
	}

	installRoot, ok := m.index.InstallPath(ref.Library)
	if !ok {
		notify(m.sink, slog.LevelWarn, "could not resolve the install path of %s", ref.Library)
		return
	}

	for _, t := range templates {
		if err := t.Validate(); err != nil {
			notify(m.sink, slog.LevelWarn, "found invalid template configuration from the provider %s: %v", ref.Provider, err)
			summary.Invalid++
			return
		}
		summary.Outcomes[m.renderer.Render(t, installRoot)]++
	}
}

// invoke calls the provider, turning a panic into an error so one provider
// cannot end the run.
func (m *Manager) invoke(ref provider.Ref, p provider.Provider, project provider.ProjectConfig, library provider.LibraryConfig) (templates []provider.Template, messages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("template provider panicked", "provider", ref.Provider, "library", ref.Library, "panic", r)
			templates, messages = nil, nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	templates, err = p.Templates(project, library)
	if mp, ok := p.(provider.MessageProvider); ok {
		messages = mp.Messages()
	}
	return templates, messages, err
}

func (m *Manager) surfaceMessages(library string, messages []string) {
	if len(messages) == 0 {
		return
	}
	notify(m.sink, slog.LevelInfo, "was passed messages from the template provider for %s", library)
	for _, msg := range messages {
		notify(m.sink, slog.LevelInfo, "* %s", msg)
	}
}
