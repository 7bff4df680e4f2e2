package switchback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/switchback/internal/codegen"
	"github.com/aretw0/switchback/internal/compiler"
	"github.com/aretw0/switchback/internal/logging"
	"github.com/aretw0/switchback/internal/validator"
	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/registry"
	"github.com/aretw0/switchback/pkg/runner"
)

// Version is the library version.
const Version = "0.1.0"

// ValidationFailedError carries the full validation report when a graph with
// blocking errors is handed to Generate or Run.
type ValidationFailedError struct {
	Report validator.Result
}

func (e *ValidationFailedError) Error() string {
	msgs := make([]string, 0, len(e.Report.Errors))
	for _, err := range e.Report.Errors {
		msgs = append(msgs, err.String())
	}
	return fmt.Sprintf("graph validation failed: %s", strings.Join(msgs, "; "))
}

// Workbench is the high-level entry point for the library: it loads graph
// descriptions, validates them, generates routing artifacts and runs
// workflows against a registry of node functions.
type Workbench struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// Option configures a Workbench.
type Option func(*Workbench)

// WithRegistry injects a pre-populated function registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(w *Workbench) {
		if reg != nil {
			w.registry = reg
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workbench) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New initializes a Workbench with an empty registry.
func New(opts ...Option) *Workbench {
	w := &Workbench{
		registry: registry.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Registry exposes the function registry for node registration.
func (w *Workbench) Registry() *registry.Registry {
	return w.registry
}

// Load reads and parses a graph description from disk.
func (w *Workbench) Load(path string) (*domain.TransitionGraph, error) {
	graph, err := compiler.Load(path)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("graph loaded", "path", path, "entrypoint", graph.Entrypoint)
	return graph, nil
}

// Parse converts graph description text into a TransitionGraph.
func Parse(data []byte) (*domain.TransitionGraph, error) {
	return compiler.Parse(data)
}

// Validate runs every structural check and returns the merged report.
func (w *Workbench) Validate(graph *domain.TransitionGraph) validator.Result {
	return validator.Validate(graph)
}

// Generate validates the graph and emits the routing artifact. Validation
// errors block generation; warnings do not.
func (w *Workbench) Generate(graph *domain.TransitionGraph, sourceRef string) (string, error) {
	report := validator.Validate(graph)
	if !report.IsValid {
		return "", &ValidationFailedError{Report: report}
	}
	for _, warning := range report.Warnings {
		w.logger.Warn("graph warning", "code", warning.Code, "detail", warning.Message)
	}
	return codegen.Generate(graph, sourceRef)
}

// Run validates the graph, resolves it against the registry and executes it.
// Graph options (iteration bound, strictness) apply first; explicit run
// options override them.
func (w *Workbench) Run(ctx context.Context, graph *domain.TransitionGraph, opts ...runner.Option) (*domain.RunResult, error) {
	report := validator.Validate(graph)
	if !report.IsValid {
		return nil, &ValidationFailedError{Report: report}
	}

	start, transitions, err := w.registry.Build(graph)
	if err != nil {
		return nil, err
	}

	runOpts := append(runner.FromGraphOptions(graph.Options), runner.WithLogger(w.logger))
	runOpts = append(runOpts, opts...)
	return runner.RunContext(ctx, start, transitions, runOpts...)
}
