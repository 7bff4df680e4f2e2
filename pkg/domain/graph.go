package domain

// NodeDefinition describes a single named unit of work in the graph.
// Names are dot-segmented hierarchical identifiers ("sub.deep.process") and
// unique within a graph. Exit nodes carry IsExit plus a numeric ExitCode.
type NodeDefinition struct {
	Name        string
	Module      string
	Function    string
	Description string
	IsExit      bool
	ExitCode    int
}

// ExitDefinition is the legacy flat exit form (v0 graph descriptions).
// Newer descriptions model exits as exit-flagged NodeDefinitions instead;
// both forms are accepted throughout the engine.
type ExitDefinition struct {
	Name        string
	Code        int
	Description string
}

// StateTransition is one outcome-driven edge: when FromNode produces the
// outcome labelled FromState, execution moves to ToTarget (a node name or a
// legacy "exit::" reference).
type StateTransition struct {
	FromNode  string
	FromState string
	ToTarget  string
}

// GraphOptions are the runtime knobs declared in the graph description.
type GraphOptions struct {
	MaxIterations       int  `mapstructure:"max_iterations"`
	EnableLoopDetection bool `mapstructure:"enable_loop_detection"`
	StrictStateCheck    bool `mapstructure:"strict_state_check"`
}

// DefaultGraphOptions returns the documented option defaults.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxIterations:       100,
		EnableLoopDetection: true,
		StrictStateCheck:    true,
	}
}

// TransitionGraph is the complete, immutable description of a workflow.
// It is constructed once by the parser and never mutated; the validator and
// generator receive it by reference and produce separate result values.
type TransitionGraph struct {
	Version     string
	Entrypoint  string
	Description string
	Nodes       []NodeDefinition
	Exits       []ExitDefinition
	Transitions []StateTransition
	StartNode   string
	Options     GraphOptions

	// Notices are parse-time advisories (for example a node-local transition
	// shadowing a top-level one). They are not errors; the validator surfaces
	// them as warnings.
	Notices []string
}

// Node returns the definition for the given name, or nil if absent.
func (g *TransitionGraph) Node(name string) *NodeDefinition {
	for i := range g.Nodes {
		if g.Nodes[i].Name == name {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Exit returns the legacy exit definition for the given name, or nil.
func (g *TransitionGraph) Exit(name string) *ExitDefinition {
	for i := range g.Exits {
		if g.Exits[i].Name == name {
			return &g.Exits[i]
		}
	}
	return nil
}

// TransitionsFrom returns all transitions whose source is the given node,
// in declaration order.
func (g *TransitionGraph) TransitionsFrom(node string) []StateTransition {
	var out []StateTransition
	for _, t := range g.Transitions {
		if t.FromNode == node {
			out = append(out, t)
		}
	}
	return out
}

// StatesFrom returns the outcome labels declared for the given node,
// in declaration order (duplicates preserved for validation).
func (g *TransitionGraph) StatesFrom(node string) []string {
	var out []string
	for _, t := range g.Transitions {
		if t.FromNode == node {
			out = append(out, t.FromState)
		}
	}
	return out
}

// FuncRef points at the implementation of a node: a module path plus the
// function name inside it. It is reference data only; resolution happens
// through explicit registration, never through reflection.
type FuncRef struct {
	Module   string `json:"module"`
	Function string `json:"function"`
}

// GraphMetadata is the self-describing block embedded in generated artifacts.
type GraphMetadata struct {
	Version       string `json:"version"`
	Entrypoint    string `json:"entrypoint"`
	Description   string `json:"description"`
	StartNode     string `json:"start_node"`
	MaxIterations int    `json:"max_iterations"`
	Source        string `json:"source"`
}
