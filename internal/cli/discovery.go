// Package cli holds the plumbing shared by the switchback commands: graph
// file discovery under the project directory and colored terminal reporting.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// DefaultGraphsDir is the conventional location of graph descriptions,
// relative to the project directory.
const DefaultGraphsDir = "transition_graphs"

// Graph descriptions are named "<entrypoint>_<number>.yml"; the number is a
// revision, so the lexically greatest filename is the newest revision.
var entrypointPattern = regexp.MustCompile(`^(.+?)_\d+\.ya?ml$`)

// FindLatestGraph returns the path of the newest graph description for the
// given entrypoint, chosen by sorting matching filenames in descending
// order.
func FindLatestGraph(graphsDir, entry string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(graphsDir, entry+"_*.yml"))
	if err != nil {
		return "", err
	}
	yaml, err := filepath.Glob(filepath.Join(graphsDir, entry+"_*.yaml"))
	if err != nil {
		return "", err
	}
	matches = append(matches, yaml...)

	var candidates []string
	for _, m := range matches {
		base := filepath.Base(m)
		if sub := entrypointPattern.FindStringSubmatch(base); sub != nil && sub[1] == entry {
			candidates = append(candidates, base)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no graph description for entrypoint %q in %s", entry, graphsDir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(candidates)))
	return filepath.Join(graphsDir, candidates[0]), nil
}

// FindEntrypoints lists every entrypoint that has at least one graph
// description in the directory, sorted and deduplicated.
func FindEntrypoints(graphsDir string) ([]string, error) {
	entries, err := os.ReadDir(graphsDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sub := entrypointPattern.FindStringSubmatch(e.Name()); sub != nil {
			seen[sub[1]] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
