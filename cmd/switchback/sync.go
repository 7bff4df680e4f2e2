package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchback"
	"github.com/aretw0/switchback/internal/cli"
	"github.com/aretw0/switchback/internal/codegen"
)

const dryRunPreviewLines = 50

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Generate transition tables from graph descriptions",
	Long: `Locates the newest graph description per entrypoint, validates it and
regenerates the routing artifact under <dir>/switchback/generated/.
Nodes that have no implementation file yet get a stub under <dir>/nodes/.`,
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := resolveEntrypoints(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		validateOnly, _ := cmd.Flags().GetBool("validate-only")
		force, _ := cmd.Flags().GetBool("force")

		reporter := cli.NewReporter()
		wb := switchback.New(switchback.WithLogger(appLogger(cmd)))

		failed := 0
		for _, entry := range entries {
			opts := syncOptions{dryRun: dryRun, validateOnly: validateOnly, force: force}
			if err := syncEntry(wb, reporter, projectDir(cmd), entry, opts); err != nil {
				reporter.Failf("%s: %v", entry, err)
				failed++
			}
		}

		reporter.Infof("synced %d of %d entrypoint(s)", len(entries)-failed, len(entries))
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("entry", "", "Entrypoint to sync")
	syncCmd.Flags().Bool("all", false, "Sync every entrypoint under the graphs directory")
	syncCmd.Flags().Bool("dry-run", false, "Print the generated artifact instead of writing it")
	syncCmd.Flags().Bool("validate-only", false, "Validate without generating")
	syncCmd.Flags().Bool("force", false, "Overwrite the existing artifact without a notice")
}

type syncOptions struct {
	dryRun       bool
	validateOnly bool
	force        bool
}

func syncEntry(wb *switchback.Workbench, reporter *cli.Reporter, dir, entry string, opts syncOptions) error {
	path, err := cli.FindLatestGraph(filepath.Join(dir, cli.DefaultGraphsDir), entry)
	if err != nil {
		return err
	}

	graph, err := wb.Load(path)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("%s (%s)", entry, filepath.Base(path))
	if !reporter.Report(label, wb.Validate(graph)) {
		return fmt.Errorf("validation failed")
	}
	if opts.validateOnly {
		return nil
	}

	code, err := wb.Generate(graph, filepath.Base(path))
	if err != nil {
		return err
	}

	if opts.dryRun {
		printPreview(code)
		return nil
	}

	outPath := filepath.Join(dir, "switchback", "generated", entry+"_transitions.go")
	if _, err := os.Stat(outPath); err == nil && !opts.force {
		reporter.Warnf("%s: overwriting existing artifact %s", entry, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(code), 0o644); err != nil {
		return err
	}
	reporter.Successf("%s: wrote %s", entry, outPath)

	stubs, err := writeMissingStubs(dir, codegen.ComputeSkeletonSpecs(graph))
	if err != nil {
		return err
	}
	if stubs > 0 {
		reporter.Infof("%s: created %d node stub(s) under %s", entry, stubs, filepath.Join(dir, "nodes"))
	}
	return nil
}

// writeMissingStubs creates implementation files for nodes that have none.
// Existing files are never touched; stubs are starting points, not managed
// artifacts.
func writeMissingStubs(dir string, specs []codegen.SkeletonSpec) (int, error) {
	written := 0
	for _, spec := range specs {
		path := codegen.ComputeFilePath(spec, dir)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		stub, err := codegen.GenerateNodeStub(spec)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, err
		}
		if err := os.WriteFile(path, []byte(stub), 0o644); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func printPreview(code string) {
	lines := strings.Split(code, "\n")
	shown := lines
	if len(shown) > dryRunPreviewLines {
		shown = shown[:dryRunPreviewLines]
	}
	fmt.Println(strings.Join(shown, "\n"))
	if rest := len(lines) - dryRunPreviewLines; rest > 0 {
		fmt.Printf("... (%d more lines)\n", rest)
	}
}
