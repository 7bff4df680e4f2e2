package runner

import (
	"context"

	"github.com/aretw0/switchback/pkg/domain"
)

// StartFunc produces the initial context and outcome. Start nodes take no
// input context.
type StartFunc func(ctx context.Context) (any, domain.Outcome)

// NodeFunc is one regular processing step: it receives the current workflow
// context and returns the next context plus an outcome. Nodes own the
// context they return; the interpreter never copies or mutates it.
type NodeFunc func(ctx context.Context, state any) (any, domain.Outcome)

// ExitFunc is a terminal node. It receives the accumulated context and
// returns the final payload: either a pre-classified *domain.ExitResult or
// any bare value, which the interpreter wraps in a default envelope
// classified from the node's name.
type ExitFunc func(ctx context.Context, state any) any

type stepKind int

const (
	kindContinue stepKind = iota
	kindTerminate
)

// Step is one routing table entry: either Continue to another node or
// Terminate the run. The variant is decided once when the table is built;
// the interpreter never re-parses strings to tell them apart.
type Step struct {
	kind   stepKind
	name   string
	run    NodeFunc
	finish ExitFunc
	class  domain.ExitClass
}

// Continue routes to the named node function.
func Continue(name string, fn NodeFunc) Step {
	return Step{kind: kindContinue, name: name, run: fn}
}

// Terminate routes to a terminal node. The exit classification is derived
// from the node's name ("exit.failure.timeout" classifies as failure with
// code 1) and is used whenever the node returns a bare payload.
func Terminate(name string, fn ExitFunc) Step {
	return Step{
		kind:   kindTerminate,
		name:   name,
		finish: fn,
		class:  domain.ClassifyExitNode(name, nil),
	}
}

// TerminateWithClass routes to a terminal node with an explicit
// classification, for exits whose declared code overrides the name.
func TerminateWithClass(name string, fn ExitFunc, class domain.ExitClass) Step {
	return Step{kind: kindTerminate, name: name, finish: fn, class: class}
}

// TerminateClass is a bare terminal marker with no callable, as produced by
// legacy "exit::color::name" table entries. The run ends with the given
// classification and the context as it stands.
func TerminateClass(class domain.ExitClass) Step {
	return Step{kind: kindTerminate, class: class}
}

// IsTerminal reports whether the step ends the run.
func (s Step) IsTerminal() bool { return s.kind == kindTerminate }

// Name returns the target node name ("" for bare terminal markers).
func (s Step) Name() string { return s.name }

// Class returns the terminal classification (zero for Continue steps).
func (s Step) Class() domain.ExitClass { return s.class }

// Transitions is the routing table: canonical state strings mapped to the
// step they trigger.
type Transitions map[string]Step

// StartStep names the start function explicitly; node identity comes from
// registration, never from function metadata.
type StartStep struct {
	Name string
	Run  StartFunc
}

// Start builds the entry step for a run.
func Start(name string, fn StartFunc) StartStep {
	return StartStep{Name: name, Run: fn}
}
