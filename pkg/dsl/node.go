package dsl

import "github.com/aretw0/switchback/pkg/domain"

// NodeBuilder provides a fluent API for configuring one node.
type NodeBuilder struct {
	builder     *Builder
	node        domain.NodeDefinition
	transitions []domain.StateTransition
}

// Module overrides the implementation module path of the node.
func (n *NodeBuilder) Module(module string) *NodeBuilder {
	n.node.Module = module
	return n
}

// Function overrides the implementation function name of the node.
func (n *NodeBuilder) Function(fn string) *NodeBuilder {
	n.node.Function = fn
	return n
}

// Describe sets the node description.
func (n *NodeBuilder) Describe(text string) *NodeBuilder {
	n.node.Description = text
	return n
}

// Code sets the exit code an exit node declares, overriding the code its
// category implies.
func (n *NodeBuilder) Code(code int) *NodeBuilder {
	n.node.ExitCode = code
	return n
}

// On routes the node's outcome state ("success::done") to a target: another
// node, an exit node, or a legacy exit marker.
func (n *NodeBuilder) On(state, target string) *NodeBuilder {
	n.transitions = append(n.transitions, domain.StateTransition{
		FromNode:  n.node.Name,
		FromState: state,
		ToTarget:  target,
	})
	return n
}

// Node declares another node on the parent builder, so whole graphs chain
// without re-referencing the builder.
func (n *NodeBuilder) Node(name string) *NodeBuilder {
	return n.builder.Node(name)
}

// Exit declares an exit node on the parent builder.
func (n *NodeBuilder) Exit(name string) *NodeBuilder {
	return n.builder.Exit(name)
}

// Build assembles the whole graph, a convenience so a chain can end without
// re-referencing the builder.
func (n *NodeBuilder) Build() (*domain.TransitionGraph, error) {
	return n.builder.Build()
}
