package engine_test

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cpcf/proforma/engine"
	"github.com/cpcf/proforma/provider"
	proformatest "github.com/cpcf/proforma/testing"
)

var validTemplate = provider.NewTemplate("blah", "template", "output", nil)

func fill(n int) []provider.Template {
	out := make([]provider.Template, n)
	for i := range out {
		out[i] = validTemplate
	}
	return out
}

type fixture struct {
	host     *proformatest.Host
	registry *provider.Registry
	renderer *proformatest.RenderRecorder
	sink     *proformatest.SinkRecorder
}

func newFixture() *fixture {
	return &fixture{
		host:     &proformatest.Host{Module: "example.com/app"},
		registry: provider.NewRegistry(),
		renderer: &proformatest.RenderRecorder{Outcome: engine.Created},
		sink:     &proformatest.SinkRecorder{},
	}
}

func (f *fixture) register(t *testing.T, name string, value any) {
	t.Helper()
	if err := f.registry.Register(name, value); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) run(refs ...provider.Ref) engine.Summary {
	manager := engine.NewManager(f.host, f.registry, f.host, f.renderer, f.sink, engine.WithManagerLogger(discardLogger))
	return manager.ProcessTemplates(refs)
}

func TestManagerTemplateProcessing(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{"no templates", nil},
		{"single template", []int{1}},
		{"one provider, multiple templates", []int{5}},
		{"one provider, no templates", []int{0}},
		{"multiple providers", []int{1, 1}},
		{"multiple providers, multiple templates", []int{3, 5, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			mock := &proformatest.SequenceProvider{}
			f.register(t, "mock", mock)

			var refs []provider.Ref
			for i, count := range tt.counts {
				library := fmt.Sprintf("lib%d", i)
				refs = append(refs, provider.Ref{Library: library, Provider: "mock"})
				mock.Sequence = append(mock.Sequence, fill(count))
			}

			summary := f.run(refs...)

			if mock.Calls != len(tt.counts) {
				t.Errorf("Expected %d provider calls, got %d", len(tt.counts), mock.Calls)
			}
			total := 0
			for i, count := range tt.counts {
				total += count
				library := fmt.Sprintf("lib%d", i)
				if got := f.renderer.CallsFor(library); got != count {
					t.Errorf("Expected %d renders with install root %s, got %d", count, library, got)
				}
			}
			if summary.Rendered() != total {
				t.Errorf("Summary.Rendered() = %d, want %d", summary.Rendered(), total)
			}
			if len(f.sink.Notices) != 0 {
				t.Errorf("Expected no notices, got %v", f.sink.Messages())
			}
		})
	}
}

func TestManagerProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		pattern  string
	}{
		{"provider not registered", "IDontExist", "^could not find the template provider IDontExist for foo$"},
		{"value not a provider", "manager", "^could not use the template provider manager for foo as it does not implement provider\\.Provider$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.register(t, "manager", &engine.Manager{})

			summary := f.run(provider.Ref{Library: "foo", Provider: tt.provider})

			if f.sink.Count(tt.pattern) != 1 || len(f.sink.Notices) != 1 {
				t.Errorf("Expected a single notice matching %q, got %v", tt.pattern, f.sink.Messages())
			}
			if len(f.renderer.Calls) != 0 {
				t.Errorf("Expected no render calls, got %d", len(f.renderer.Calls))
			}
			if summary.Rejected != 1 {
				t.Errorf("Summary.Rejected = %d, want 1", summary.Rejected)
			}
		})
	}
}

func TestManagerInvalidTemplateStopsProvider(t *testing.T) {
	f := newFixture()
	mock := &proformatest.SequenceProvider{
		Sequence: [][]provider.Template{{validTemplate, {}, validTemplate}},
	}
	f.register(t, "mock", mock)

	summary := f.run(provider.Ref{Library: "foo", Provider: "mock"})

	if mock.Calls != 1 {
		t.Errorf("Expected one provider call, got %d", mock.Calls)
	}
	if len(f.renderer.Calls) != 1 {
		t.Errorf("Expected exactly one render call, got %d", len(f.renderer.Calls))
	}
	if f.sink.Count("^found invalid template configuration from the provider ") != 1 || len(f.sink.Notices) != 1 {
		t.Errorf("Expected one invalid template notice, got %v", f.sink.Messages())
	}
	if summary.Invalid != 1 {
		t.Errorf("Summary.Invalid = %d, want 1", summary.Invalid)
	}
}

func TestManagerErrorsDontAffectValidProviders(t *testing.T) {
	f := newFixture()
	mock := &proformatest.SequenceProvider{
		Sequence: [][]provider.Template{fill(3), {{}}, fill(5)},
	}
	f.register(t, "mock", mock)
	f.register(t, "manager", &engine.Manager{})

	f.run(
		provider.Ref{Library: "foo", Provider: "IDontExist"},
		provider.Ref{Library: "bar", Provider: "manager"},
		provider.Ref{Library: "one", Provider: "mock"},
		provider.Ref{Library: "baz", Provider: "mock"},
		provider.Ref{Library: "two", Provider: "mock"},
	)

	if mock.Calls != 3 {
		t.Errorf("Expected 3 provider calls, got %d", mock.Calls)
	}
	if got := f.renderer.CallsFor("one"); got != 3 {
		t.Errorf("Expected 3 renders for one, got %d", got)
	}
	if got := f.renderer.CallsFor("two"); got != 5 {
		t.Errorf("Expected 5 renders for two, got %d", got)
	}
	if len(f.renderer.Calls) != 8 {
		t.Errorf("Expected 8 render calls, got %d", len(f.renderer.Calls))
	}
	if len(f.sink.Notices) != 3 {
		t.Errorf("Expected 3 diagnostics, got %v", f.sink.Messages())
	}
}

func TestManagerProviderIsolation(t *testing.T) {
	f := newFixture()
	f.register(t, "three", &proformatest.SequenceProvider{Sequence: [][]provider.Template{fill(3)}})
	f.register(t, "five", &proformatest.SequenceProvider{Sequence: [][]provider.Template{fill(5)}})
	f.register(t, "broken", "not a provider")

	f.run(
		provider.Ref{Library: "a", Provider: "unresolvable"},
		provider.Ref{Library: "b", Provider: "broken"},
		provider.Ref{Library: "c", Provider: "three"},
		provider.Ref{Library: "d", Provider: "five"},
	)

	if len(f.renderer.Calls) != 8 {
		t.Errorf("Expected 8 render calls, got %d", len(f.renderer.Calls))
	}
	if len(f.sink.Notices) != 2 {
		t.Errorf("Expected 2 diagnostics, got %v", f.sink.Messages())
	}
}

func TestManagerFatalNamespace(t *testing.T) {
	f := newFixture()
	f.host.NamespaceErr = errors.New("no module directive")
	mock := &proformatest.SequenceProvider{Sequence: [][]provider.Template{fill(2)}}
	f.register(t, "mock", mock)

	summary := f.run(provider.Ref{Library: "foo", Provider: "mock"}, provider.Ref{Library: "bar", Provider: "missing"})

	if !summary.Aborted {
		t.Error("Expected the run to be aborted")
	}
	if mock.Calls != 0 {
		t.Errorf("Expected no provider calls, got %d", mock.Calls)
	}
	if len(f.renderer.Calls) != 0 {
		t.Errorf("Expected no render calls, got %d", len(f.renderer.Calls))
	}
	if len(f.sink.Notices) != 1 || f.sink.Count("^could not determine the project namespace: ") != 1 {
		t.Errorf("Expected exactly one namespace notice, got %v", f.sink.Messages())
	}
	if f.sink.Notices[0].Level != slog.LevelError {
		t.Errorf("Namespace notice level = %v, want ERROR", f.sink.Notices[0].Level)
	}
}

func TestManagerPassesConfiguration(t *testing.T) {
	f := newFixture()
	f.host.Installed = []string{"github.com/acme/httpkit"}
	f.host.Settings = map[string]map[string]any{"github.com/acme/httpkit": {"service": "billing"}}
	mock := &proformatest.SequenceProvider{}
	f.register(t, "mock", mock)

	f.run(provider.Ref{Library: "github.com/acme/httpkit", Provider: "mock"})

	if mock.Project.Namespace() != "example.com/app" {
		t.Errorf("Provider got namespace %q", mock.Project.Namespace())
	}
	if v, _ := mock.Library.StringValue("service"); v != "billing" {
		t.Errorf("Provider got library config service=%q", v)
	}
}

func TestManagerSurfacesMessages(t *testing.T) {
	f := newFixture()
	f.register(t, "mock", &proformatest.SequenceProvider{
		Sequence: [][]provider.Template{fill(1)},
		Notes:    []string{"Register the handler in main.go.", "Run go mod tidy."},
	})

	f.run(provider.Ref{Library: "github.com/acme/httpkit", Provider: "mock"})

	want := []string{
		"was passed messages from the template provider for github.com/acme/httpkit",
		"* Register the handler in main.go.",
		"* Run go mod tidy.",
	}
	if diff := cmp.Diff(want, f.sink.Messages()); diff != "" {
		t.Errorf("Messages mismatch (-want +got):\n%s", diff)
	}
	if len(f.renderer.Calls) != 1 {
		t.Errorf("Expected one render call, got %d", len(f.renderer.Calls))
	}
}

func TestManagerProviderFailure(t *testing.T) {
	f := newFixture()
	failing := provider.Func(func(provider.ProjectConfig, provider.LibraryConfig) ([]provider.Template, error) {
		return fill(2), errors.New("config key 'service' is required")
	})
	f.register(t, "failing", failing)
	f.register(t, "ok", &proformatest.SequenceProvider{Sequence: [][]provider.Template{fill(1)}})

	summary := f.run(
		provider.Ref{Library: "a", Provider: "failing"},
		provider.Ref{Library: "b", Provider: "ok"},
	)

	if f.sink.Count("^the template provider failing failed for a: config key 'service' is required$") != 1 {
		t.Errorf("Expected provider failure notice, got %v", f.sink.Messages())
	}
	if len(f.renderer.Calls) != 1 || f.renderer.Calls[0].InstallRoot != "b" {
		t.Errorf("Expected only provider b to render, got %+v", f.renderer.Calls)
	}
	if summary.Invoked != 2 {
		t.Errorf("Summary.Invoked = %d, want 2", summary.Invoked)
	}
}

type panickingProvider struct{}

func (panickingProvider) Templates(provider.ProjectConfig, provider.LibraryConfig) ([]provider.Template, error) {
	var settings map[string]string
	settings["service"] = "api"
	return nil, nil
}

func TestManagerMisbehavingProviders(t *testing.T) {
	var nilProvider *proformatest.SequenceProvider

	tests := []struct {
		name    string
		value   any
		pattern string
	}{
		{"typed nil", nilProvider, "^could not use the template provider broken for a as it does not implement provider\\.Provider$"},
		{"panics", panickingProvider{}, "^the template provider broken failed for a: panic: assignment to entry in nil map$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.register(t, "broken", tt.value)
			f.register(t, "ok", &proformatest.SequenceProvider{Sequence: [][]provider.Template{fill(2)}})

			var summary engine.Summary
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("ProcessTemplates panicked: %v", r)
					}
				}()
				summary = f.run(
					provider.Ref{Library: "a", Provider: "broken"},
					provider.Ref{Library: "b", Provider: "ok"},
				)
			}()

			if f.sink.Count(tt.pattern) != 1 || len(f.sink.Notices) != 1 {
				t.Errorf("Expected a single notice matching %q, got %v", tt.pattern, f.sink.Messages())
			}
			if got := f.renderer.CallsFor("b"); got != 2 {
				t.Errorf("Expected 2 renders for b, got %d", got)
			}
			if summary.Rendered() != 2 {
				t.Errorf("Summary.Rendered() = %d, want 2", summary.Rendered())
			}
		})
	}
}

func TestManagerUnresolvedInstallPath(t *testing.T) {
	f := newFixture()
	f.host.InstallRoots = map[string]string{"b": "/mod/b"}
	f.register(t, "mock", &proformatest.SequenceProvider{Sequence: [][]provider.Template{fill(2), fill(1)}})

	f.run(
		provider.Ref{Library: "a", Provider: "mock"},
		provider.Ref{Library: "b", Provider: "mock"},
	)

	if f.sink.Count("^could not resolve the install path of a$") != 1 {
		t.Errorf("Expected install path notice, got %v", f.sink.Messages())
	}
	if len(f.renderer.Calls) != 1 || f.renderer.Calls[0].InstallRoot != "/mod/b" {
		t.Errorf("Expected a single render for b, got %+v", f.renderer.Calls)
	}
}

func TestManagerSummaryOutcomes(t *testing.T) {
	f := newFixture()
	f.renderer.Outcome = engine.Skipped
	f.register(t, "mock", &proformatest.SequenceProvider{Sequence: [][]provider.Template{fill(4)}})

	summary := f.run(provider.Ref{Library: "a", Provider: "mock"})

	if summary.Outcomes[engine.Skipped] != 4 {
		t.Errorf("Expected 4 skipped outcomes, got %v", summary.Outcomes)
	}
	if summary.Providers != 1 || summary.Invoked != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}
