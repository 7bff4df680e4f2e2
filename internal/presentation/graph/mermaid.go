// Package graph renders a TransitionGraph as a Mermaid flowchart, for
// documentation and quick visual review of a graph description.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchback/pkg/domain"
)

// GenerateMermaid produces Mermaid flowchart syntax for the graph.
// It applies semantic styling:
// - Entrypoint: ((Circle))
// - Exit node: ([Stadium]), annotated with its exit code
// - Default: [Rectangle]
// Legacy exit markers referenced in transitions get synthesized terminal
// nodes so every edge has a visible target. Terminal edges are dotted.
func GenerateMermaid(g *domain.TransitionGraph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.Name)

		opener, closer := "[", "]"
		label := node.Name
		switch {
		case node.Name == g.Entrypoint:
			opener, closer = "((", "))"
		case node.IsExit:
			opener, closer = "([", "])"
			label = fmt.Sprintf("%s <br/> code %d", node.Name, node.ExitCode)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	// Declared legacy exits are terminals even though they are not nodes.
	for _, exit := range g.Exits {
		safeID := sanitizeMermaidID("exit::" + exit.Name)
		sb.WriteString(fmt.Sprintf("    %s([\"exit %s <br/> code %d\"])\n", safeID, exit.Name, exit.Code))
	}

	// Color markers only exist as transition targets; synthesize them once.
	seen := make(map[string]bool)
	for _, t := range g.Transitions {
		if !domain.IsLegacyExitRef(t.ToTarget) {
			continue
		}
		if color, name, err := domain.ParseExit(t.ToTarget); err == nil {
			safeID := sanitizeMermaidID(t.ToTarget)
			if !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    %s([\"exit %s (%s)\"])\n", safeID, name, color))
			}
		}
	}

	for _, t := range g.Transitions {
		from := sanitizeMermaidID(t.FromNode)
		to := sanitizeMermaidID(t.ToTarget)

		terminal := domain.IsLegacyExitRef(t.ToTarget)
		if node := g.Node(t.ToTarget); node != nil && node.IsExit {
			terminal = true
		}

		arrow := fmt.Sprintf("-- \"%s\" -->", t.FromState)
		if terminal {
			arrow = fmt.Sprintf("-. \"%s\" .->", t.FromState)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, "::", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
