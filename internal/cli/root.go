// Package cli implements the greencode command line client. It analyzes
// source files locally with the embedded pattern library or remotely against
// a running API server.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the greencode command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "greencode",
		Short: "Estimate the energy footprint of source code",
		Long: `greencode scans source code for energy-wasteful patterns, estimates
energy, CO2 and cost per execution, and suggests greener rewrites.`,
		SilenceUsage: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		NewAnalyzeCmd(),
		NewTipsCmd(),
		NewLanguagesCmd(),
		newVersionCmd(version),
	)
	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "greencode %s\n", version)
		},
	}
}
