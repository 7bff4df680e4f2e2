package validator

import (
	"sort"
	"strings"

	"github.com/aretw0/switchback/pkg/domain"
)

// Validate runs the full battery of structural checks and merges their
// results. Parse-time notices are surfaced here as warnings so one report
// carries everything.
func Validate(graph *domain.TransitionGraph) Result {
	results := []Result{
		StartNodeExists(graph),
		TransitionTargetsExist(graph),
		Reachability(graph),
		Termination(graph),
		NoDuplicateStates(graph),
		ValidIdentifiers(graph),
		Notices(graph),
	}
	if graph.Options.EnableLoopDetection {
		results = append(results, NoInfiniteLoop(graph))
	}
	return Combine(results...)
}

// StartNodeExists checks that the declared start node is defined.
func StartNodeExists(graph *domain.TransitionGraph) Result {
	if graph.Node(graph.StartNode) == nil {
		return Errorf(CodeStartNodeMissing, "start node '%s' is not defined", graph.StartNode)
	}
	return Valid()
}

// TransitionTargetsExist checks that every transition resolves to a declared
// node or, for legacy "exit::" references, a declared exit.
func TransitionTargetsExist(graph *domain.TransitionGraph) Result {
	var results []Result

	for _, t := range graph.Transitions {
		if domain.IsLegacyExitRef(t.ToTarget) {
			if !legacyExitResolves(graph, t.ToTarget) {
				results = append(results, Errorf(CodeUnknownExitTarget,
					"transition target exit '%s' is not defined (node '%s', state '%s')",
					t.ToTarget, t.FromNode, t.FromState))
			}
			continue
		}
		if graph.Node(t.ToTarget) == nil {
			results = append(results, Errorf(CodeUnknownNodeTarget,
				"transition target node '%s' is not defined (node '%s', state '%s')",
				t.ToTarget, t.FromNode, t.FromState))
		}
	}
	return Combine(results...)
}

// legacyExitResolves accepts the two legacy marker forms: "exit::name"
// referencing the exits section, and "exit::color::name" with the
// classification carried inline.
func legacyExitResolves(graph *domain.TransitionGraph, target string) bool {
	rest := strings.TrimPrefix(target, "exit"+domain.StateSeparator)
	parts := strings.Split(rest, domain.StateSeparator)
	switch len(parts) {
	case 1:
		return graph.Exit(parts[0]) != nil
	case 2:
		switch parts[0] {
		case domain.ColorGreen, domain.ColorYellow, domain.ColorRed:
			return true
		}
		return false
	default:
		return false
	}
}

// Reachability warns about nodes that a breadth-first traversal from the
// start node never visits. Unreachable nodes are reported, not rejected.
func Reachability(graph *domain.TransitionGraph) Result {
	reachable := reachableNodes(graph)

	var unreachable []string
	for _, node := range graph.Nodes {
		if !reachable[node.Name] {
			unreachable = append(unreachable, node.Name)
		}
	}

	var results []Result
	for _, name := range unreachable {
		results = append(results, Warnf(CodeUnreachableNode,
			"node '%s' is unreachable from start node '%s'", name, graph.StartNode))
	}
	return Combine(results...)
}

// reachableNodes walks transition edges breadth-first from the start node.
// Legacy exit references are terminal and not followed.
func reachableNodes(graph *domain.TransitionGraph) map[string]bool {
	reachable := make(map[string]bool)
	queue := []string{graph.StartNode}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if reachable[current] {
			continue
		}
		reachable[current] = true

		for _, t := range graph.TransitionsFrom(current) {
			if domain.IsLegacyExitRef(t.ToTarget) {
				continue
			}
			if !reachable[t.ToTarget] {
				queue = append(queue, t.ToTarget)
			}
		}
	}
	return reachable
}

// Termination checks that every reachable non-exit node has at least one
// outgoing transition. Exit-flagged nodes are terminal by definition.
func Termination(graph *domain.TransitionGraph) Result {
	reachable := reachableNodes(graph)

	var results []Result
	for _, node := range graph.Nodes {
		if !reachable[node.Name] || node.IsExit {
			continue
		}
		if len(graph.TransitionsFrom(node.Name)) == 0 {
			results = append(results, Errorf(CodeDeadEnd,
				"node '%s' has no outgoing transitions (dead end)", node.Name))
		}
	}
	return Combine(results...)
}

// NoDuplicateStates checks that no node declares the same outcome label on
// two transitions.
func NoDuplicateStates(graph *domain.TransitionGraph) Result {
	var results []Result

	for _, node := range graph.Nodes {
		seen := make(map[string]bool)
		for _, state := range graph.StatesFrom(node.Name) {
			if seen[state] {
				results = append(results, Errorf(CodeDuplicateState,
					"node '%s' declares state '%s' more than once", node.Name, state))
			}
			seen[state] = true
		}
	}
	return Combine(results...)
}

// NoInfiniteLoop detects reachable nodes with no path to any exit. It seeds
// a reverse breadth-first traversal from every node with a direct exit
// transition (either a legacy "exit::" reference or an exit-flagged target)
// and flags whatever reachable node the traversal never touches.
func NoInfiniteLoop(graph *domain.TransitionGraph) Result {
	canExit := make(map[string]bool)
	var queue []string

	seed := func(name string) {
		if !canExit[name] {
			canExit[name] = true
			queue = append(queue, name)
		}
	}

	for _, node := range graph.Nodes {
		if node.IsExit {
			seed(node.Name)
		}
	}
	for _, t := range graph.Transitions {
		if domain.IsLegacyExitRef(t.ToTarget) {
			seed(t.FromNode)
		} else if target := graph.Node(t.ToTarget); target != nil && target.IsExit {
			seed(t.FromNode)
		}
	}

	reverse := make(map[string][]string)
	for _, t := range graph.Transitions {
		if !domain.IsLegacyExitRef(t.ToTarget) {
			reverse[t.ToTarget] = append(reverse[t.ToTarget], t.FromNode)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, source := range reverse[current] {
			seed(source)
		}
	}

	reachable := reachableNodes(graph)
	var stuck []string
	for name := range reachable {
		if !canExit[name] && graph.Node(name) != nil {
			stuck = append(stuck, name)
		}
	}
	if len(stuck) == 0 {
		return Valid()
	}
	sort.Strings(stuck)
	return Errorf(CodeNoExitPath,
		"no path to an exit from: %s (possible infinite loop)", strings.Join(stuck, ", "))
}

// ValidIdentifiers checks that every dot-segment of every node name can be
// used as a safe identifier in generated source, reporting a normalized
// suggestion for anything that cannot.
func ValidIdentifiers(graph *domain.TransitionGraph) Result {
	var results []Result

	if graph.Entrypoint != "" {
		if v := ValidateEntryName(graph.Entrypoint); !v.IsValid {
			results = append(results, Errorf(CodeInvalidName,
				"entrypoint '%s': %s (suggestion: '%s')", graph.Entrypoint, v.Reason, v.Suggestion))
		}
	}
	for _, node := range graph.Nodes {
		if v := ValidateNodeName(node.Name); !v.IsValid {
			results = append(results, Errorf(CodeInvalidName,
				"node '%s': %s (suggestion: '%s')", node.Name, v.Reason, v.Suggestion))
		}
	}
	return Combine(results...)
}

// Notices re-emits parse-time advisories as warnings so the validation
// report is the single place callers look.
func Notices(graph *domain.TransitionGraph) Result {
	var results []Result
	for _, notice := range graph.Notices {
		results = append(results, Warnf(CodeShadowedTransition, "%s", notice))
	}
	return Combine(results...)
}
