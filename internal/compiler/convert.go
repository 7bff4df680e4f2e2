package compiler

import (
	"strings"

	"github.com/aretw0/switchback/pkg/domain"
)

// ToNested converts a graph using the legacy flat exits section into the
// nested exit-as-node convention. Legacy exit definitions become exit-flagged
// nodes and "exit::name" transition targets are rewritten to the matching
// node path. Inline "exit::color::name" markers classify by their color and
// get an exit node synthesized for them. Classification, code and description
// are all preserved. Graphs without legacy exits are returned unchanged.
func ToNested(g *domain.TransitionGraph) *domain.TransitionGraph {
	if len(g.Exits) == 0 && !hasLegacyExitRefs(g) {
		return g
	}

	out := *g
	out.Nodes = append([]domain.NodeDefinition(nil), g.Nodes...)
	out.Exits = nil

	nameToPath := make(map[string]string, len(g.Exits))
	for _, exit := range g.Exits {
		path := domain.ExitNodePath(exit.Name, exit.Code)
		nameToPath[exit.Name] = path
		out.Nodes = appendExitNode(out.Nodes, path, exit.Code, exit.Description)
	}

	out.Transitions = make([]domain.StateTransition, len(g.Transitions))
	for i, t := range g.Transitions {
		out.Transitions[i] = t
		if !domain.IsLegacyExitRef(t.ToTarget) {
			continue
		}
		name := strings.TrimPrefix(t.ToTarget, "exit"+domain.StateSeparator)
		if path, ok := nameToPath[name]; ok {
			out.Transitions[i].ToTarget = path
			continue
		}
		color, leaf, err := domain.ParseExit(t.ToTarget)
		if err != nil {
			// Dangling "exit::name" reference; leave it for the validator.
			continue
		}
		class := domain.ClassifyLegacyExit(color+"_"+leaf, 0)
		class.Code = domain.CodeForCategory(class.Category)
		path := domain.ExitNodePrefix + class.Category + "." + class.Detail
		out.Transitions[i].ToTarget = path
		out.Nodes = appendExitNode(out.Nodes, path, class.Code, "")
	}
	return &out
}

func hasLegacyExitRefs(g *domain.TransitionGraph) bool {
	for _, t := range g.Transitions {
		if domain.IsLegacyExitRef(t.ToTarget) {
			return true
		}
	}
	return false
}

func appendExitNode(nodes []domain.NodeDefinition, path string, code int, description string) []domain.NodeDefinition {
	for _, n := range nodes {
		if n.Name == path {
			return nodes
		}
	}
	leaf := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		leaf = path[i+1:]
	}
	return append(nodes, domain.NodeDefinition{
		Name:        path,
		Module:      "nodes." + path,
		Function:    leaf,
		Description: description,
		IsExit:      true,
		ExitCode:    code,
	})
}

// ToLegacy converts a graph using exit-flagged nodes back into the flat
// exits section. It is the inverse of ToNested: classification, code and
// description survive the round trip in both directions.
func ToLegacy(g *domain.TransitionGraph) *domain.TransitionGraph {
	out := *g
	out.Nodes = nil
	out.Exits = append([]domain.ExitDefinition(nil), g.Exits...)

	pathToName := make(map[string]string)
	for _, node := range g.Nodes {
		if !node.IsExit {
			out.Nodes = append(out.Nodes, node)
			continue
		}
		code := node.ExitCode
		class := domain.ClassifyExitNode(node.Name, &code)
		legacyName := legacyExitName(class)
		pathToName[node.Name] = legacyName
		if g.Exit(legacyName) == nil {
			out.Exits = append(out.Exits, domain.ExitDefinition{
				Name:        legacyName,
				Code:        node.ExitCode,
				Description: node.Description,
			})
		}
	}

	out.Transitions = make([]domain.StateTransition, len(g.Transitions))
	for i, t := range g.Transitions {
		out.Transitions[i] = t
		if name, ok := pathToName[t.ToTarget]; ok {
			out.Transitions[i].ToTarget = "exit::" + name
		}
	}
	return &out
}

// legacyExitName renders an ExitClass as a flat exit name
// ({color}_{detail}, dots flattened to underscores).
func legacyExitName(class domain.ExitClass) string {
	detail := strings.ReplaceAll(class.Detail, ".", "_")
	return class.Color() + "_" + detail
}
