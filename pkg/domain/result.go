package domain

// ExitResult is the pre-classified payload a terminal node may return.
// When an exit node returns one of these, the interpreter keeps it as-is and
// only fills in the run bookkeeping; any other payload is wrapped in a
// default envelope classified from the terminal node's name.
type ExitResult struct {
	Class   ExitClass
	Context any
	Fields  map[string]any
}

// RunResult is the immutable snapshot produced once per interpreter run.
type RunResult struct {
	// RunID identifies this run in observer output and audit records.
	RunID string

	// Class is the terminal classification. It is the zero value when the
	// run ended on an unmapped state under lenient handling, in which case
	// ExitState() and Color() are empty.
	Class ExitClass

	// Context is the workflow data accumulated by the nodes, opaque to the
	// engine.
	Context any

	// Fields carries extra data from a pre-classified terminal payload.
	Fields map[string]any

	// Iterations counts node invocations, terminal node included.
	Iterations int

	// ExecutionPath lists the node names visited, in order.
	ExecutionPath []string
}

// ExitState returns the terminal exit-state string ("success.done"), or the
// empty string for a lenient-undefined termination.
func (r *RunResult) ExitState() string { return r.Class.State() }

// Color returns the legacy color label for the terminal class.
func (r *RunResult) Color() string { return r.Class.Color() }

// ExitCode returns the numeric exit code declared by the terminal node.
func (r *RunResult) ExitCode() int { return r.Class.Code }

// IsSuccess reports whether the run terminated in a success-class exit.
// A lenient-undefined termination is not a success.
func (r *RunResult) IsSuccess() bool {
	return r.Class.Category != "" && r.Class.IsSuccess()
}
