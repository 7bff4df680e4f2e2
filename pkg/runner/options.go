package runner

import (
	"log/slog"

	"github.com/aretw0/switchback/pkg/domain"
)

// DefaultMaxIterations bounds a run when no option says otherwise.
const DefaultMaxIterations = 100

type config struct {
	maxIterations int
	strict        bool
	observer      StepObserver
	logger        *slog.Logger
	runID         string
}

// Option configures a run.
type Option func(*config)

// WithMaxIterations sets the execution-count bound. It guards against
// runaway loops, not wall-clock time; a hung node call still hangs the run.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithStrictStates controls undefined-state handling. Strict runs fail with
// an UndefinedStateError; lenient runs terminate early with an empty exit
// code and the context as-is.
func WithStrictStates(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithObserver registers a step observer, invoked synchronously for every
// step including the terminal one. Observer panics are not recovered; they
// abort the run.
func WithObserver(observer StepObserver) Option {
	return func(c *config) {
		c.observer = observer
	}
}

// WithLogger sets the structured logger for run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRunID pins the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(c *config) {
		c.runID = id
	}
}

// FromGraphOptions translates declared graph options into run options.
func FromGraphOptions(opts domain.GraphOptions) []Option {
	return []Option{
		WithMaxIterations(opts.MaxIterations),
		WithStrictStates(opts.StrictStateCheck),
	}
}
