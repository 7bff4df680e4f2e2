package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchback"
	"github.com/aretw0/switchback/internal/cli"
	"github.com/aretw0/switchback/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render a graph description as a Mermaid flowchart",
	Run: func(cmd *cobra.Command, args []string) {
		entry, _ := cmd.Flags().GetString("entry")

		path, err := cli.FindLatestGraph(graphsDir(cmd), entry)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		g, err := switchback.New(switchback.WithLogger(appLogger(cmd))).Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(graph.GenerateMermaid(g))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("entry", "", "Entrypoint to render")
	_ = graphCmd.MarkFlagRequired("entry")
}
