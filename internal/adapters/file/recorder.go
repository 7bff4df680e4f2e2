// Package file persists workflow run history as JSON files on the local
// filesystem: one directory per run with a step log and a result entry.
// It is the zero-dependency alternative to the Redis recorder.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/switchback/internal/logging"
	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

// Recorder writes step records and run results under a base directory:
//
//	<base>/<runID>/steps.json
//	<base>/<runID>/result.json
type Recorder struct {
	basePath string
	logger   *slog.Logger
	masks    []*regexp.Regexp

	mu sync.Mutex
}

type Option func(*Recorder)

// WithLogger sets the logger for persistence failures. Observation must not
// abort a run, so write errors are logged instead of returned.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRedaction masks the values of context keys matching any of the given
// patterns before they reach disk. Only map-shaped workflow contexts are
// inspected; anything else is not persisted at all.
func WithRedaction(patterns ...string) Option {
	return func(r *Recorder) {
		for _, p := range patterns {
			r.masks = append(r.masks, regexp.MustCompile(p))
		}
	}
}

// New creates a recorder rooted at basePath. An empty path defaults to
// ".switchback/runs".
func New(basePath string, opts ...Option) *Recorder {
	if basePath == "" {
		basePath = filepath.Join(".switchback", "runs")
	}
	rec := &Recorder{
		basePath: basePath,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(rec)
	}
	return rec
}

func (r *Recorder) runDir(runID string) string { return filepath.Join(r.basePath, runID) }

func (r *Recorder) stepsPath(runID string) string {
	return filepath.Join(r.runDir(runID), "steps.json")
}

func (r *Recorder) resultPath(runID string) string {
	return filepath.Join(r.runDir(runID), "result.json")
}

type stepEntry struct {
	NodeName  string         `json:"node_name"`
	State     string         `json:"state"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type resultEntry struct {
	RunID         string    `json:"run_id"`
	ExitState     string    `json:"exit_state"`
	ExitCode      int       `json:"exit_code"`
	IsSuccess     bool      `json:"is_success"`
	Iterations    int       `json:"iterations"`
	ExecutionPath []string  `json:"execution_path"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Observer adapts the recorder into a step observer for one run. Map-shaped
// workflow contexts are persisted after redaction; other context types are
// dropped because their serialization is not the recorder's to guess.
func (r *Recorder) Observer(runID string) runner.StepObserver {
	return func(node, state string, context any) {
		entry := stepEntry{
			NodeName:  node,
			State:     state,
			Timestamp: time.Now(),
		}
		if m, ok := context.(map[string]any); ok {
			entry.Context = r.redact(m)
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		steps, err := r.readSteps(runID)
		if err != nil {
			r.logger.Warn("cannot read step log", "run_id", runID, "err", err)
			return
		}
		steps = append(steps, entry)
		if err := r.writeJSON(r.stepsPath(runID), steps); err != nil {
			r.logger.Warn("cannot persist step record", "run_id", runID, "err", err)
		}
	}
}

// redact returns a copy of the context with matching keys masked. The copy
// is shallow except for nested maps, which are recursed into; the run's own
// context is never mutated.
func (r *Recorder) redact(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if r.matches(k) {
			out[k] = "***"
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = r.redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func (r *Recorder) matches(key string) bool {
	for _, re := range r.masks {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// SaveResult persists the final shape of a finished run.
func (r *Recorder) SaveResult(ctx context.Context, result *domain.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeJSON(r.resultPath(result.RunID), resultEntry{
		RunID:         result.RunID,
		ExitState:     result.ExitState(),
		ExitCode:      result.ExitCode(),
		IsSuccess:     result.IsSuccess(),
		Iterations:    result.Iterations,
		ExecutionPath: result.ExecutionPath,
		FinishedAt:    time.Now(),
	})
}

// History returns the recorded steps of a run, in execution order.
func (r *Recorder) History(ctx context.Context, runID string) ([]runner.StepRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps, err := r.readSteps(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run history: %w", err)
	}

	records := make([]runner.StepRecord, 0, len(steps))
	for _, entry := range steps {
		record := runner.StepRecord{
			NodeName:  entry.NodeName,
			State:     entry.State,
			Timestamp: entry.Timestamp,
		}
		if entry.Context != nil {
			record.Context = entry.Context
		}
		records = append(records, record)
	}
	return records, nil
}

// Runs lists recorded run IDs, sorted lexically.
func (r *Recorder) Runs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.basePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Recorder) readSteps(runID string) ([]stepEntry, error) {
	data, err := os.ReadFile(r.stepsPath(runID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var steps []stepEntry
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("corrupt step log for run %s: %w", runID, err)
	}
	return steps, nil
}

func (r *Recorder) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to ensure run directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}
