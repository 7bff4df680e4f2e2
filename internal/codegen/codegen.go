// Package codegen emits executable routing artifacts from a parsed graph.
// Every generator is a pure function from graph to source text: no
// filesystem access, and byte-identical output for identical input. Writing
// the result out is the caller's job.
package codegen

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"github.com/aretw0/switchback/pkg/domain"
)

// GenerateError reports an artifact that failed its syntax self-check.
// It indicates a generator bug, never a graph authoring problem.
type GenerateError struct {
	Err error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("generated artifact is not valid Go: %v", e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// SanitizeIdentifier turns a node or state name into a symbol usable in
// generated source: uppercase, with every separator and non-identifier
// character replaced by an underscore. Dotted names stay valid as table
// keys; this transform is only for symbol positions.
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			// Separator runs ("::") collapse to a single underscore.
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return b.String()
}

// PackageName derives the generated package name from the entrypoint.
func PackageName(entrypoint string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(entrypoint) {
		switch {
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "workflow"
	}
	return b.String()
}

// GenerateStateConstants enumerates the state space: one constant per
// declared transition source state, named from the sanitized node and
// outcome label, valued as the original dotted state string.
func GenerateStateConstants(graph *domain.TransitionGraph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s states.\nconst (\n", graph.Entrypoint)

	seen := make(map[string]bool)
	for _, t := range graph.Transitions {
		name := "STATE_" + SanitizeIdentifier(t.FromNode+"_"+t.FromState)
		if seen[name] {
			continue
		}
		seen[name] = true
		value := t.FromNode + domain.StateSeparator + t.FromState
		fmt.Fprintf(&b, "\t%s = %s\n", name, strconv.Quote(value))
	}
	b.WriteString(")\n")
	return b.String()
}

// GenerateExitConstants emits the exit-code constant set, covering both the
// legacy exits section and exit-flagged nodes.
func GenerateExitConstants(graph *domain.TransitionGraph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s exit codes.\nconst (\n", graph.Entrypoint)

	seen := make(map[string]bool)
	emit := func(name string, code int) {
		symbol := SanitizeIdentifier(name)
		if !strings.HasPrefix(symbol, "EXIT_") {
			symbol = "EXIT_" + symbol
		}
		if seen[symbol] {
			return
		}
		seen[symbol] = true
		fmt.Fprintf(&b, "\t%s = %d\n", symbol, code)
	}

	for _, e := range graph.Exits {
		emit(e.Name, e.Code)
	}
	for _, n := range graph.Nodes {
		if n.IsExit {
			emit(n.Name, n.ExitCode)
		}
	}
	b.WriteString(")\n")
	return b.String()
}

// GenerateRoutingTable emits the raw transition lookup table. Keys and
// values are plain strings; resolution against registered functions happens
// in BuildTransitions at run time.
func GenerateRoutingTable(graph *domain.TransitionGraph) string {
	var b strings.Builder
	b.WriteString("// RoutingTable maps each state string to its transition target.\n")
	b.WriteString("var RoutingTable = map[string]string{\n")
	for _, t := range graph.Transitions {
		key := t.FromNode + domain.StateSeparator + t.FromState
		fmt.Fprintf(&b, "\t%s: %s,\n", strconv.Quote(key), strconv.Quote(t.ToTarget))
	}
	b.WriteString("}\n")
	return b.String()
}

// GenerateReferences emits the implementation reference for every node, so
// tooling can report where each registered function is expected to live.
func GenerateReferences(graph *domain.TransitionGraph) string {
	var b strings.Builder
	b.WriteString("// References lists the declared implementation of each node.\n")
	b.WriteString("var References = map[string]domain.FuncRef{\n")
	for _, n := range graph.Nodes {
		fmt.Fprintf(&b, "\t%s: {Module: %s, Function: %s},\n",
			strconv.Quote(n.Name), strconv.Quote(n.Module), strconv.Quote(leafName(n.Function)))
	}
	b.WriteString("}\n")
	return b.String()
}

// GenerateMetadata emits the self-describing metadata block.
func GenerateMetadata(graph *domain.TransitionGraph, sourceRef string) string {
	var b strings.Builder
	b.WriteString("// GraphMetadata describes the originating graph.\n")
	b.WriteString("var GraphMetadata = domain.GraphMetadata{\n")
	fmt.Fprintf(&b, "\tVersion: %s,\n", strconv.Quote(graph.Version))
	fmt.Fprintf(&b, "\tEntrypoint: %s,\n", strconv.Quote(graph.Entrypoint))
	fmt.Fprintf(&b, "\tDescription: %s,\n", strconv.Quote(graph.Description))
	fmt.Fprintf(&b, "\tStartNode: %s,\n", strconv.Quote(graph.StartNode))
	fmt.Fprintf(&b, "\tMaxIterations: %d,\n", graph.Options.MaxIterations)
	fmt.Fprintf(&b, "\tSource: %s,\n", strconv.Quote(sourceRef))
	b.WriteString("}\n")
	return b.String()
}

// Generate assembles the complete artifact: header, state and exit
// constants, routing table, references, metadata and the BuildTransitions
// resolver. The output is run through the Go formatter, which doubles as the
// syntax self-check; a formatting failure is returned as a GenerateError.
func Generate(graph *domain.TransitionGraph, sourceRef string) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by switchback sync from %s. DO NOT EDIT.\n\n", sourceRef)
	fmt.Fprintf(&b, "package %s\n\n", PackageName(graph.Entrypoint))
	b.WriteString("import (\n")
	b.WriteString("\t\"github.com/aretw0/switchback/pkg/domain\"\n")
	b.WriteString("\t\"github.com/aretw0/switchback/pkg/registry\"\n")
	b.WriteString("\t\"github.com/aretw0/switchback/pkg/runner\"\n")
	b.WriteString(")\n\n")

	b.WriteString(GenerateStateConstants(graph))
	b.WriteString("\n")
	b.WriteString(GenerateExitConstants(graph))
	b.WriteString("\n")
	b.WriteString(GenerateRoutingTable(graph))
	b.WriteString("\n")
	b.WriteString(GenerateReferences(graph))
	b.WriteString("\n")
	b.WriteString(GenerateMetadata(graph, sourceRef))
	b.WriteString("\n")
	b.WriteString("// BuildTransitions resolves the routing table against the registry.\n")
	b.WriteString("func BuildTransitions(reg *registry.Registry) (runner.Transitions, error) {\n")
	b.WriteString("\treturn reg.Route(RoutingTable)\n")
	b.WriteString("}\n")

	formatted, err := format.Source([]byte(b.String()))
	if err != nil {
		return "", &GenerateError{Err: err}
	}
	return string(formatted), nil
}

// leafName returns the last dotted segment of a function reference. Parsers
// normally normalize this already; dotted references are handled here too so
// generated symbols stay valid.
func leafName(fn string) string {
	if i := strings.LastIndex(fn, "."); i >= 0 {
		return fn[i+1:]
	}
	return fn
}
