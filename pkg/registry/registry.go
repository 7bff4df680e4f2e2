// Package registry maps node names to their implementations. Resolution is
// always explicit: callers register every start, node and exit function by
// name, and routing tables are built from those registrations. Nothing is
// discovered through reflection.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

// NotRegisteredError reports a routing target with no registered
// implementation.
type NotRegisteredError struct {
	Kind string
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("%s function not registered: %s", e.Kind, e.Name)
}

// Registry holds the registered workflow functions.
type Registry struct {
	mu     sync.RWMutex
	starts map[string]runner.StartFunc
	nodes  map[string]runner.NodeFunc
	exits  map[string]runner.ExitFunc
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		starts: make(map[string]runner.StartFunc),
		nodes:  make(map[string]runner.NodeFunc),
		exits:  make(map[string]runner.ExitFunc),
	}
}

// RegisterStart adds a start function under the given node name.
// An existing registration for the name is overwritten.
func (r *Registry) RegisterStart(name string, fn runner.StartFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts[name] = fn
}

// RegisterNode adds a regular node function under the given name.
func (r *Registry) RegisterNode(name string, fn runner.NodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[name] = fn
}

// RegisterExit adds a terminal node function under the given name.
func (r *Registry) RegisterExit(name string, fn runner.ExitFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits[name] = fn
}

// Start looks up a registered start function.
func (r *Registry) Start(name string) (runner.StartFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.starts[name]
	if !ok {
		return nil, &NotRegisteredError{Kind: "start", Name: name}
	}
	return fn, nil
}

// Route builds a routing table from raw state-string entries, as embedded in
// generated artifacts. Targets named like exit nodes ("exit.failure.timeout")
// become terminal steps classified from the name; legacy "exit::" markers
// become bare terminal markers; every other target must resolve to a
// registered node function. Legacy markers without a color prefix default to
// exit code 0; use Build with the full graph when declared codes matter.
func (r *Registry) Route(table map[string]string) (runner.Transitions, error) {
	return r.route(table, nil)
}

// Build resolves a parsed graph against the registry: the start function for
// the graph's start node plus the full routing table, honoring declared exit
// codes from both the legacy exits section and exit-flagged nodes.
func (r *Registry) Build(graph *domain.TransitionGraph) (runner.StartStep, runner.Transitions, error) {
	start, err := r.Start(graph.StartNode)
	if err != nil {
		return runner.StartStep{}, nil, err
	}

	table := make(map[string]string, len(graph.Transitions))
	for _, t := range graph.Transitions {
		table[t.FromNode+domain.StateSeparator+t.FromState] = t.ToTarget
	}

	transitions, err := r.route(table, graph)
	if err != nil {
		return runner.StartStep{}, nil, err
	}
	return runner.Start(graph.StartNode, start), transitions, nil
}

func (r *Registry) route(table map[string]string, graph *domain.TransitionGraph) (runner.Transitions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transitions := make(runner.Transitions, len(table))
	for state, target := range table {
		switch {
		case domain.IsLegacyExitRef(target):
			class, err := classifyLegacyTarget(target, graph)
			if err != nil {
				return nil, err
			}
			transitions[state] = runner.TerminateClass(class)

		case domain.IsExitNodeName(target):
			fn, ok := r.exits[target]
			if !ok {
				return nil, &NotRegisteredError{Kind: "exit", Name: target}
			}
			if node := graphNode(graph, target); node != nil {
				code := node.ExitCode
				transitions[state] = runner.TerminateWithClass(target, fn, domain.ClassifyExitNode(target, &code))
			} else {
				transitions[state] = runner.Terminate(target, fn)
			}

		default:
			fn, ok := r.nodes[target]
			if !ok {
				return nil, &NotRegisteredError{Kind: "node", Name: target}
			}
			transitions[state] = runner.Continue(target, fn)
		}
	}
	return transitions, nil
}

func graphNode(graph *domain.TransitionGraph, name string) *domain.NodeDefinition {
	if graph == nil {
		return nil
	}
	return graph.Node(name)
}

// classifyLegacyTarget decodes a legacy exit marker. Two forms exist:
// "exit::name" references an entry in the exits section, and
// "exit::color::name" carries the color inline.
func classifyLegacyTarget(target string, graph *domain.TransitionGraph) (domain.ExitClass, error) {
	parts := strings.Split(target, domain.StateSeparator)
	switch len(parts) {
	case 2:
		name := parts[1]
		code := 0
		if graph != nil {
			if def := graph.Exit(name); def != nil {
				code = def.Code
			}
		}
		return domain.ClassifyLegacyExit(name, code), nil
	case 3:
		color, name := parts[1], parts[2]
		category, ok := categoryForColor(color)
		if !ok {
			return domain.ExitClass{}, fmt.Errorf("invalid exit marker %q: unknown color %q", target, color)
		}
		code := domain.CodeForCategory(category)
		if graph != nil {
			if def := graph.Exit(color + "_" + name); def != nil {
				code = def.Code
			}
		}
		return domain.ClassifyLegacyExit(color+"_"+name, code), nil
	default:
		return domain.ExitClass{}, fmt.Errorf("invalid exit marker %q", target)
	}
}

func categoryForColor(color string) (string, bool) {
	switch color {
	case domain.ColorGreen:
		return domain.CategorySuccess, true
	case domain.ColorYellow:
		return domain.CategoryWarning, true
	case domain.ColorRed:
		return domain.CategoryFailure, true
	}
	return "", false
}
