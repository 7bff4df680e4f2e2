package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchback"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of switchback",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("switchback version %s\n", strings.TrimSpace(switchback.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
