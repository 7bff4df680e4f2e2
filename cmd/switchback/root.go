package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchback/internal/cli"
	"github.com/aretw0/switchback/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "switchback",
	Short: "Switchback compiles declarative workflow graphs into transition tables",
	Long: `Switchback turns YAML transition-graph descriptions into validated,
generated Go routing tables, and can run or serve a loaded graph.

Graph descriptions live under <dir>/` + cli.DefaultGraphsDir + `/ and are named
"<entrypoint>_<revision>.yml"; commands always pick the newest revision.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory containing "+cli.DefaultGraphsDir+"/")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity")
}

func projectDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("dir")
	return dir
}

func graphsDir(cmd *cobra.Command) string {
	return filepath.Join(projectDir(cmd), cli.DefaultGraphsDir)
}

// appLogger is silent by default so command output owns the terminal;
// -v turns on diagnostics to Stderr.
func appLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetCount("verbose")
	if verbose == 0 {
		return logging.NewNop()
	}
	return logging.New(logging.FromVerbosity(verbose))
}

// resolveEntrypoints interprets the shared --entry/--all flag pair.
func resolveEntrypoints(cmd *cobra.Command) ([]string, error) {
	entry, _ := cmd.Flags().GetString("entry")
	all, _ := cmd.Flags().GetBool("all")

	switch {
	case all && entry != "":
		return nil, fmt.Errorf("--entry and --all are mutually exclusive")
	case all:
		entries, err := cli.FindEntrypoints(graphsDir(cmd))
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("no graph descriptions found in %s", graphsDir(cmd))
		}
		return entries, nil
	case entry != "":
		return []string{entry}, nil
	default:
		return nil, fmt.Errorf("one of --entry or --all is required")
	}
}
