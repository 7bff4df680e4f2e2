package runner

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/switchback/pkg/domain"
)

// Run executes a workflow synchronously: node invocations block the calling
// goroutine until the run terminates. See RunContext for the context-aware
// sibling; the routing logic is identical.
func Run(start StartStep, transitions Transitions, opts ...Option) (*domain.RunResult, error) {
	return RunContext(context.Background(), start, transitions, opts...)
}

// RunContext executes a workflow, threading ctx into every node invocation
// so nodes that block on I/O can honor their own deadlines. The interpreter
// itself imposes no timeout; the only built-in bound is the iteration
// counter.
func RunContext(ctx context.Context, start StartStep, transitions Transitions, opts ...Option) (*domain.RunResult, error) {
	cfg := config{
		maxIterations: DefaultMaxIterations,
		strict:        true,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}

	logger := cfg.logger.With("run_id", cfg.runID)
	logger.Debug("workflow started", "start", start.Name, "max_iterations", cfg.maxIterations)

	var path []string
	iterations := 0

	state, outcome := start.Run(ctx)
	node := start.Name
	stateString := outcome.StateString(node)
	path = append(path, node)
	iterations++

	logger.Debug("step", "n", iterations, "node", node, "state", stateString)
	cfg.observe(node, stateString, state)

	for iterations < cfg.maxIterations {
		step, ok := transitions[stateString]
		if !ok {
			if cfg.strict {
				return nil, &UndefinedStateError{State: stateString, Node: node}
			}
			logger.Warn("undefined state, terminating leniently", "state", stateString)
			return &domain.RunResult{
				RunID:         cfg.runID,
				Context:       state,
				Iterations:    iterations,
				ExecutionPath: path,
			}, nil
		}

		if step.IsTerminal() {
			return finishRun(ctx, cfg, logger, step, state, iterations, path)
		}

		iterations++
		state, outcome = step.run(ctx, state)
		node = step.name
		stateString = outcome.StateString(node)
		path = append(path, node)

		logger.Debug("step", "n", iterations, "node", node, "state", stateString)
		cfg.observe(node, stateString, state)
	}

	tail := path
	if len(tail) > 10 {
		tail = tail[len(tail)-10:]
	}
	return nil, &MaxIterationsError{Max: cfg.maxIterations, PathTail: tail}
}

// finishRun handles a terminal step. Legacy markers end the run with the
// context as it stands; exit nodes are invoked like any other step and their
// payload decides the final shape.
func finishRun(ctx context.Context, cfg config, logger *slog.Logger, step Step, state any, iterations int, path []string) (*domain.RunResult, error) {
	if step.finish == nil {
		logger.Debug("workflow finished (legacy exit)", "exit", step.class.State())
		return &domain.RunResult{
			RunID:         cfg.runID,
			Class:         step.class,
			Context:       state,
			Iterations:    iterations,
			ExecutionPath: path,
		}, nil
	}

	iterations++
	payload := step.finish(ctx, state)
	path = append(path, step.name)

	result := &domain.RunResult{
		RunID:         cfg.runID,
		Class:         step.class,
		Context:       payload,
		Iterations:    iterations,
		ExecutionPath: path,
	}
	if exit, ok := payload.(*domain.ExitResult); ok {
		if exit.Class.Category != "" {
			result.Class = exit.Class
		}
		result.Context = exit.Context
		result.Fields = exit.Fields
	}

	logger.Debug("workflow finished (exit node)", "node", step.name, "exit", result.Class.State())
	cfg.observe(step.name, "exit::"+result.Class.State(), result.Context)
	return result, nil
}

func (c config) observe(node, state string, context any) {
	if c.observer != nil {
		c.observer(node, state, context)
	}
}
