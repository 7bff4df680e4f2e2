// Package compiler turns graph descriptions (YAML text) into the immutable
// Graph Model. Parsing is a pure function from bytes to a TransitionGraph;
// the only filesystem access in the engine is the Load boundary in this
// package.
package compiler

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/switchback/pkg/domain"
)

// SupportedVersions lists accepted graph description versions.
var SupportedVersions = []string{"1.0"}

// ParseError reports a malformed or incomplete graph description.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// Parse converts YAML content into a TransitionGraph.
//
// It fails with a ParseError when the document cannot be decoded, the root
// is not a mapping, a required top-level field (version, entrypoint, nodes,
// start, transitions) is missing, or a node entry lacks its implementation
// reference. Structural soundness beyond that is the validator's job, so
// staged authoring (transitions referencing not-yet-declared nodes) parses
// fine.
func Parse(data []byte) (*domain.TransitionGraph, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Msg: "invalid YAML syntax", Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, parseErrorf("graph description is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, parseErrorf("graph description root must be a mapping")
	}

	for _, field := range []string{"version", "entrypoint", "nodes", "start", "transitions"} {
		if lookup(root, field) == nil {
			return nil, parseErrorf("missing required field: %s", field)
		}
	}

	graph := &domain.TransitionGraph{
		Version:     scalarString(lookup(root, "version")),
		Entrypoint:  scalarString(lookup(root, "entrypoint")),
		Description: scalarString(lookup(root, "description")),
		StartNode:   scalarString(lookup(root, "start")),
		Options:     domain.DefaultGraphOptions(),
	}

	nodes, locals, err := parseNodes(lookup(root, "nodes"))
	if err != nil {
		return nil, err
	}
	graph.Nodes = nodes

	graph.Exits = parseExits(lookup(root, "exits"))

	top := parseTransitions(lookup(root, "transitions"))
	graph.Transitions, graph.Notices = mergeTransitions(top, locals)

	if opts := lookup(root, "options"); opts != nil {
		parsed, err := parseOptions(opts)
		if err != nil {
			return nil, err
		}
		graph.Options = parsed
	}

	return graph, nil
}

// mappingPairs walks a mapping node in document order.
func mappingPairs(node *yaml.Node) [][2]*yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	pairs := make([][2]*yaml.Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pairs = append(pairs, [2]*yaml.Node{node.Content[i], node.Content[i+1]})
	}
	return pairs
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	for _, pair := range mappingPairs(node) {
		if pair[0].Value == key {
			return pair[1]
		}
	}
	return nil
}

func scalarString(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return node.Value
	}
	return s
}

func scalarInt(node *yaml.Node) (int, bool) {
	if node == nil {
		return 0, false
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return 0, false
	}
	return n, true
}

// parseNodes flattens the nodes mapping into definitions, in document order.
// The reserved "exit" key holds the nested exit tree; every other entry is a
// regular node and must carry its module/function implementation reference.
// Node-local transition blocks are collected separately for merging.
func parseNodes(node *yaml.Node) ([]domain.NodeDefinition, []domain.StateTransition, error) {
	var defs []domain.NodeDefinition
	var locals []domain.StateTransition

	for _, pair := range mappingPairs(node) {
		name := pair[0].Value
		val := pair[1]

		if name == "exit" {
			exits, err := flattenExitTree("exit", val)
			if err != nil {
				return nil, nil, err
			}
			defs = append(defs, exits...)
			continue
		}

		if val.Kind != yaml.MappingNode {
			return nil, nil, parseErrorf("node %q has invalid data", name)
		}
		def, err := parseNodeDefinition(name, val)
		if err != nil {
			return nil, nil, err
		}
		defs = append(defs, def)

		if local := lookup(val, "transitions"); local != nil {
			for _, t := range mappingPairs(local) {
				locals = append(locals, domain.StateTransition{
					FromNode:  name,
					FromState: t[0].Value,
					ToTarget:  scalarString(t[1]),
				})
			}
		}
	}
	return defs, locals, nil
}

func parseNodeDefinition(name string, val *yaml.Node) (domain.NodeDefinition, error) {
	module := lookup(val, "module")
	if module == nil {
		return domain.NodeDefinition{}, parseErrorf("node %q is missing module", name)
	}
	function := lookup(val, "function")
	if function == nil {
		return domain.NodeDefinition{}, parseErrorf("node %q is missing function", name)
	}

	def := domain.NodeDefinition{
		Name:        name,
		Module:      scalarString(module),
		Function:    scalarString(function),
		Description: scalarString(lookup(val, "description")),
	}
	if domain.IsExitNodeName(name) {
		def.IsExit = true
		declared, ok := scalarInt(lookup(val, "code"))
		var codePtr *int
		if ok {
			codePtr = &declared
		}
		def.ExitCode = domain.ClassifyExitNode(name, codePtr).Code
	}
	return def, nil
}

// flattenExitTree converts the nested exit mapping into exit-flagged node
// definitions. A leaf is a mapping with no mapping-valued children.
func flattenExitTree(prefix string, node *yaml.Node) ([]domain.NodeDefinition, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, parseErrorf("exit tree under %q must be a mapping", prefix)
	}

	if isExitLeaf(node) {
		name := prefix
		declared, ok := scalarInt(lookup(node, "code"))
		var codePtr *int
		if ok {
			codePtr = &declared
		}
		class := domain.ClassifyExitNode(name, codePtr)
		leaf := name
		if i := lastDot(name); i >= 0 {
			leaf = name[i+1:]
		}
		return []domain.NodeDefinition{{
			Name:        name,
			Module:      "nodes." + name,
			Function:    leaf,
			Description: scalarString(lookup(node, "description")),
			IsExit:      true,
			ExitCode:    class.Code,
		}}, nil
	}

	var defs []domain.NodeDefinition
	for _, pair := range mappingPairs(node) {
		children, err := flattenExitTree(prefix+"."+pair[0].Value, pair[1])
		if err != nil {
			return nil, err
		}
		defs = append(defs, children...)
	}
	return defs, nil
}

func isExitLeaf(node *yaml.Node) bool {
	for _, pair := range mappingPairs(node) {
		if pair[1].Kind == yaml.MappingNode {
			return false
		}
	}
	return true
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func parseExits(node *yaml.Node) []domain.ExitDefinition {
	var exits []domain.ExitDefinition
	for _, pair := range mappingPairs(node) {
		def := domain.ExitDefinition{Name: pair[0].Value}
		if pair[1].Kind == yaml.MappingNode {
			if code, ok := scalarInt(lookup(pair[1], "code")); ok {
				def.Code = code
			}
			def.Description = scalarString(lookup(pair[1], "description"))
		}
		exits = append(exits, def)
	}
	return exits
}

// parseTransitions flattens the top-level transition block. A source whose
// value is not a mapping is treated as having zero outgoing transitions; the
// termination check reports it later with full context.
func parseTransitions(node *yaml.Node) []domain.StateTransition {
	var out []domain.StateTransition
	for _, pair := range mappingPairs(node) {
		from := pair[0].Value
		if pair[1].Kind != yaml.MappingNode {
			continue
		}
		for _, t := range mappingPairs(pair[1]) {
			out = append(out, domain.StateTransition{
				FromNode:  from,
				FromState: t[0].Value,
				ToTarget:  scalarString(t[1]),
			})
		}
	}
	return out
}

// mergeTransitions combines the top-level block with node-local
// declarations. A local entry wins over a top-level one for the same
// (node, state) pair; the shadowed entry is dropped and recorded as a
// notice for the validator to surface.
func mergeTransitions(top, locals []domain.StateTransition) ([]domain.StateTransition, []string) {
	if len(locals) == 0 {
		return top, nil
	}

	localKeys := make(map[string]bool, len(locals))
	for _, t := range locals {
		localKeys[t.FromNode+"\x00"+t.FromState] = true
	}

	var merged []domain.StateTransition
	var notices []string
	for _, t := range top {
		if localKeys[t.FromNode+"\x00"+t.FromState] {
			notices = append(notices, fmt.Sprintf(
				"node-local transition for '%s' state '%s' overrides the top-level declaration",
				t.FromNode, t.FromState))
			continue
		}
		merged = append(merged, t)
	}
	return append(merged, locals...), notices
}

func parseOptions(node *yaml.Node) (domain.GraphOptions, error) {
	opts := domain.DefaultGraphOptions()
	if node.Kind != yaml.MappingNode {
		return opts, nil
	}

	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return opts, &ParseError{Msg: "invalid options block", Err: err}
	}
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return opts, &ParseError{Msg: "invalid options block", Err: err}
	}
	return opts, nil
}
