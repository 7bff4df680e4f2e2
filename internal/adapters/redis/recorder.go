// Package redis persists workflow run history to Redis, so execution paths
// survive the process and operators can inspect past runs.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/switchback/internal/logging"
	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

// Recorder writes step records and run results to Redis. Each run gets a
// step list and a result entry under its run ID, plus a ZSET index of run
// IDs ordered by completion time.
type Recorder struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Recorder)

// WithTTL sets the expiration for run history entries.
func WithTTL(ttl time.Duration) Option {
	return func(r *Recorder) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix for run history.
func WithPrefix(prefix string) Option {
	return func(r *Recorder) {
		r.prefix = prefix
	}
}

// WithLogger sets the logger for persistence failures. Observation must not
// abort a run, so write errors are logged instead of returned.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a recorder with its own client.
func New(address, password string, db int, opts ...Option) *Recorder {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a recorder from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Recorder {
	rec := &Recorder{
		client: client,
		prefix: "switchback:run:",
		ttl:    0, // No expiration by default
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(rec)
	}
	return rec
}

// Client exposes the underlying connection so collaborators (the run
// locker) can share it.
func (r *Recorder) Client() *backend.Client { return r.client }

func (r *Recorder) stepsKey(runID string) string  { return r.prefix + runID + ":steps" }
func (r *Recorder) resultKey(runID string) string { return r.prefix + runID + ":result" }
func (r *Recorder) indexKey() string              { return r.prefix + "index" }

type stepEntry struct {
	NodeName  string    `json:"node_name"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

type resultEntry struct {
	RunID         string   `json:"run_id"`
	ExitState     string   `json:"exit_state"`
	ExitCode      int      `json:"exit_code"`
	IsSuccess     bool     `json:"is_success"`
	Iterations    int      `json:"iterations"`
	ExecutionPath []string `json:"execution_path"`
}

// Observer adapts the recorder into a step observer for one run. The
// workflow context is not persisted; it is opaque and may not serialize.
func (r *Recorder) Observer(ctx context.Context, runID string) runner.StepObserver {
	return func(node, state string, _ any) {
		data, err := json.Marshal(stepEntry{
			NodeName:  node,
			State:     state,
			Timestamp: time.Now(),
		})
		if err != nil {
			r.logger.Warn("cannot encode step record", "run_id", runID, "err", err)
			return
		}

		pipe := r.client.Pipeline()
		pipe.RPush(ctx, r.stepsKey(runID), data)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.stepsKey(runID), r.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			r.logger.Warn("cannot persist step record", "run_id", runID, "err", err)
		}
	}
}

// SaveResult persists the final shape of a finished run and indexes it.
func (r *Recorder) SaveResult(ctx context.Context, result *domain.RunResult) error {
	data, err := json.Marshal(resultEntry{
		RunID:         result.RunID,
		ExitState:     result.ExitState(),
		ExitCode:      result.ExitCode(),
		IsSuccess:     result.IsSuccess(),
		Iterations:    result.Iterations,
		ExecutionPath: result.ExecutionPath,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.resultKey(result.RunID), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{
		Score:  float64(time.Now().Unix()),
		Member: result.RunID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	return nil
}

// History returns the recorded steps of a run, in execution order.
func (r *Recorder) History(ctx context.Context, runID string) ([]runner.StepRecord, error) {
	entries, err := r.client.LRange(ctx, r.stepsKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load run history: %w", err)
	}

	records := make([]runner.StepRecord, 0, len(entries))
	for _, raw := range entries {
		var entry stepEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("corrupt step record for run %s: %w", runID, err)
		}
		records = append(records, runner.StepRecord{
			NodeName:  entry.NodeName,
			State:     entry.State,
			Timestamp: entry.Timestamp,
		})
	}
	return records, nil
}

// Runs lists recorded run IDs, oldest first.
func (r *Recorder) Runs(ctx context.Context) ([]string, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return ids, nil
}
