package runner

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StepObserver is notified of every step, terminal one included, in
// execution order: the node that ran, the state string it produced and the
// workflow context at that point.
type StepObserver func(node, state string, context any)

// Composite fans one notification out to several observers, in order.
func Composite(observers ...StepObserver) StepObserver {
	return func(node, state string, context any) {
		for _, observe := range observers {
			observe(node, state, context)
		}
	}
}

// StepRecord is one recorded step.
type StepRecord struct {
	NodeName  string    `json:"node_name"`
	State     string    `json:"state"`
	Context   any       `json:"context"`
	Timestamp time.Time `json:"timestamp"`
}

// StepRecorder collects the execution history of a run. Safe for use from a
// single run; the mutex only guards readers inspecting a live run.
type StepRecorder struct {
	mu    sync.Mutex
	steps []StepRecord
}

// NewStepRecorder creates an empty recorder.
func NewStepRecorder() *StepRecorder {
	return &StepRecorder{}
}

// Observe implements StepObserver.
func (r *StepRecorder) Observe(node, state string, context any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, StepRecord{
		NodeName:  node,
		State:     state,
		Context:   context,
		Timestamp: time.Now(),
	})
}

// History returns a copy of the recorded steps.
func (r *StepRecorder) History() []StepRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StepRecord, len(r.steps))
	copy(out, r.steps)
	return out
}

// Reset clears the history.
func (r *StepRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

// AuditLogger writes one structured audit line per step.
type AuditLogger struct {
	logger *slog.Logger
	// WorkflowID correlates the audit trail; generated when not provided.
	WorkflowID string
}

// NewAuditLogger creates an audit observer. A nil logger uses slog.Default;
// an empty workflowID gets a generated one.
func NewAuditLogger(logger *slog.Logger, workflowID string) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	if workflowID == "" {
		workflowID = uuid.NewString()
	}
	return &AuditLogger{logger: logger, WorkflowID: workflowID}
}

// Observe implements StepObserver.
func (a *AuditLogger) Observe(node, state string, _ any) {
	a.logger.Info("workflow step",
		"workflow_id", a.WorkflowID,
		"node", node,
		"state", state,
	)
}
