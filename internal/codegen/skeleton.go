package codegen

import (
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	"github.com/aretw0/switchback/pkg/domain"
)

// SkeletonSpec describes one node stub to generate. Regular nodes live
// under the entrypoint's namespace; exit nodes keep their own hierarchy so
// graphs can share terminal implementations.
type SkeletonSpec struct {
	NodeName   string
	ModulePath string
	Entrypoint string
	IsExit     bool
	IsStart    bool
}

// NewSkeletonSpec computes the stub spec for a single node.
func NewSkeletonSpec(nodeName, entrypoint string, isExit bool) SkeletonSpec {
	module := "nodes." + entrypoint + "." + nodeName
	if isExit {
		module = "nodes." + nodeName
	}
	return SkeletonSpec{
		NodeName:   nodeName,
		ModulePath: module,
		Entrypoint: entrypoint,
		IsExit:     isExit,
	}
}

// ComputeSkeletonSpecs builds stub specs for every node in a graph,
// marking the start node and exit nodes from their definitions.
func ComputeSkeletonSpecs(graph *domain.TransitionGraph) []SkeletonSpec {
	specs := make([]SkeletonSpec, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		spec := NewSkeletonSpec(n.Name, graph.Entrypoint, n.IsExit)
		spec.IsStart = n.Name == graph.StartNode
		specs = append(specs, spec)
	}
	return specs
}

// ComputeFilePath maps a stub spec onto the filesystem: each dotted module
// segment becomes a directory, the leaf becomes a Go file.
func ComputeFilePath(spec SkeletonSpec, root string) string {
	segments := strings.Split(spec.ModulePath, ".")
	parts := append([]string{root}, segments...)
	return filepath.Join(parts...) + ".go"
}

// GenerateNodeStub emits a minimal compilable implementation for a node
// that has none yet. Start nodes get the start signature, exit nodes the
// terminal one, everything else a regular node function. The stub is
// formatted before being returned.
func GenerateNodeStub(spec SkeletonSpec) (string, error) {
	leaf := lastSegment(spec.NodeName)
	fn := exportedName(leaf)
	pkg := stubPackage(spec)

	var b strings.Builder
	fmt.Fprintf(&b, "// Stub for node %q, generated by switchback sync. Replace the body.\n", spec.NodeName)
	fmt.Fprintf(&b, "package %s\n\n", pkg)

	switch {
	case spec.IsExit:
		b.WriteString("import \"context\"\n\n")
		fmt.Fprintf(&b, "// %s terminates the %s workflow.\n", fn, spec.Entrypoint)
		fmt.Fprintf(&b, "func %s(ctx context.Context, state any) any {\n", fn)
		b.WriteString("\treturn state\n")
		b.WriteString("}\n")
	case spec.IsStart:
		b.WriteString("import (\n\t\"context\"\n\n\t\"github.com/aretw0/switchback/pkg/domain\"\n)\n\n")
		fmt.Fprintf(&b, "// %s starts the %s workflow.\n", fn, spec.Entrypoint)
		fmt.Fprintf(&b, "func %s(ctx context.Context) (any, domain.Outcome) {\n", fn)
		b.WriteString("\treturn nil, domain.Success(\"\")\n")
		b.WriteString("}\n")
	default:
		b.WriteString("import (\n\t\"context\"\n\n\t\"github.com/aretw0/switchback/pkg/domain\"\n)\n\n")
		fmt.Fprintf(&b, "// %s implements the %q node of the %s workflow.\n", fn, spec.NodeName, spec.Entrypoint)
		fmt.Fprintf(&b, "func %s(ctx context.Context, state any) (any, domain.Outcome) {\n", fn)
		b.WriteString("\treturn state, domain.Success(\"\")\n")
		b.WriteString("}\n")
	}

	formatted, err := format.Source([]byte(b.String()))
	if err != nil {
		return "", &GenerateError{Err: err}
	}
	return string(formatted), nil
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// exportedName converts a snake_case leaf into an exported Go identifier
// ("validate_user_input" becomes "ValidateUserInput").
func exportedName(leaf string) string {
	var b strings.Builder
	for _, part := range strings.Split(leaf, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "Node"
	}
	return b.String()
}

// stubPackage is the directory-derived package name for a stub file.
func stubPackage(spec SkeletonSpec) string {
	segments := strings.Split(spec.ModulePath, ".")
	if len(segments) < 2 {
		return "nodes"
	}
	return PackageName(segments[len(segments)-2])
}
