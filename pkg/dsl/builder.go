package dsl

import (
	"fmt"

	"github.com/aretw0/switchback/pkg/domain"
)

// Builder assembles a TransitionGraph in declaration order.
type Builder struct {
	entrypoint  string
	version     string
	description string
	startNode   string
	options     domain.GraphOptions

	order []string
	nodes map[string]*NodeBuilder
	exits []domain.ExitDefinition
}

// New creates a builder for the named entrypoint. The first regular node
// declared becomes the start node unless Start overrides it.
func New(entrypoint string) *Builder {
	return &Builder{
		entrypoint: entrypoint,
		version:    "1.0",
		options:    domain.DefaultGraphOptions(),
		nodes:      make(map[string]*NodeBuilder),
	}
}

// Describe sets the graph description.
func (b *Builder) Describe(text string) *Builder {
	b.description = text
	return b
}

// Start overrides which node a run begins at.
func (b *Builder) Start(name string) *Builder {
	b.startNode = name
	return b
}

// MaxIterations caps the number of node invocations per run.
func (b *Builder) MaxIterations(n int) *Builder {
	b.options.MaxIterations = n
	return b
}

// StrictStates makes undefined states fail the run instead of terminating
// it leniently.
func (b *Builder) StrictStates(strict bool) *Builder {
	b.options.StrictStateCheck = strict
	return b
}

// Node declares a regular node, or returns the existing declaration so
// transitions can be added incrementally.
func (b *Builder) Node(name string) *NodeBuilder {
	return b.add(name, false)
}

// Exit declares an exit node ("exit.success.done").
func (b *Builder) Exit(name string) *NodeBuilder {
	return b.add(name, true)
}

// LegacyExit declares a flat exit for "exit::<name>" markers.
func (b *Builder) LegacyExit(name string, code int, description string) *Builder {
	b.exits = append(b.exits, domain.ExitDefinition{
		Name:        name,
		Code:        code,
		Description: description,
	})
	return b
}

func (b *Builder) add(name string, isExit bool) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{
		builder: b,
		node: domain.NodeDefinition{
			Name:     name,
			Module:   defaultModule(b.entrypoint, name, isExit),
			Function: name,
			IsExit:   isExit,
		},
	}
	if isExit {
		// Exit nodes classify by name until Code overrides.
		nb.node.ExitCode = domain.ClassifyExitNode(name, nil).Code
	}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	if b.startNode == "" && !isExit {
		b.startNode = name
	}
	return nb
}

// Regular nodes live under the entrypoint's package; exit nodes are shared
// across graphs and live directly under nodes/.
func defaultModule(entrypoint, name string, isExit bool) string {
	if isExit {
		return "nodes." + name
	}
	return "nodes." + entrypoint + "." + name
}

// Build assembles the graph. Declaration order is preserved for nodes and
// transitions, so generated artifacts are stable.
func (b *Builder) Build() (*domain.TransitionGraph, error) {
	if b.entrypoint == "" {
		return nil, fmt.Errorf("graph has no entrypoint")
	}
	if _, ok := b.nodes[b.startNode]; !ok {
		return nil, fmt.Errorf("start node %q is not declared", b.startNode)
	}

	g := &domain.TransitionGraph{
		Version:     b.version,
		Entrypoint:  b.entrypoint,
		Description: b.description,
		StartNode:   b.startNode,
		Options:     b.options,
		Exits:       b.exits,
	}
	for _, name := range b.order {
		nb := b.nodes[name]
		g.Nodes = append(g.Nodes, nb.node)
		g.Transitions = append(g.Transitions, nb.transitions...)
	}
	return g, nil
}
