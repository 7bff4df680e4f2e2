package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchback"
	"github.com/aretw0/switchback/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check graph descriptions for consistency",
	Long: `Loads the newest graph description per entrypoint and reports every
structural defect in one pass: unknown targets, dead ends, duplicate
states, invalid names and unguarded cycles.`,
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := resolveEntrypoints(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		reporter := cli.NewReporter()
		wb := switchback.New(switchback.WithLogger(appLogger(cmd)))

		failed := 0
		for _, entry := range entries {
			if !validateEntry(wb, reporter, graphsDir(cmd), entry) {
				failed++
			}
		}
		if failed > 0 {
			reporter.Failf("%d of %d entrypoint(s) failed validation", failed, len(entries))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("entry", "", "Entrypoint to validate")
	validateCmd.Flags().Bool("all", false, "Validate every entrypoint under the graphs directory")
}

func validateEntry(wb *switchback.Workbench, reporter *cli.Reporter, dir, entry string) bool {
	path, err := cli.FindLatestGraph(dir, entry)
	if err != nil {
		reporter.Failf("%s: %v", entry, err)
		return false
	}
	graph, err := wb.Load(path)
	if err != nil {
		reporter.Failf("%s: %v", entry, err)
		return false
	}
	return reporter.Report(fmt.Sprintf("%s (%s)", entry, filepath.Base(path)), wb.Validate(graph))
}
