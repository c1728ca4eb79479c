package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"greencode-backend/internal/analyses/engine"
)

// NewTipsCmd returns the tips subcommand.
func NewTipsCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "tips LANGUAGE",
		Short: "Show energy-saving tips for a language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := engine.DefaultLibrary()
			if err != nil {
				return fmt.Errorf("load pattern library: %w", err)
			}
			tips := lib.Tips(args[0])
			out := cmd.OutOrStdout()
			switch output {
			case "json":
				return displayJSON(out, tips)
			case "yaml":
				return displayYAML(out, tips)
			}
			color.New(color.FgCyan, color.Bold).Fprintf(out, "Tips for %s:\n", args[0])
			writeTips(out, tips)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "human", "Output format (human, json, yaml)")
	return cmd
}

// NewLanguagesCmd returns the languages subcommand.
func NewLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List languages with dedicated tips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := engine.DefaultLibrary()
			if err != nil {
				return fmt.Errorf("load pattern library: %w", err)
			}
			for _, lang := range lib.Languages() {
				fmt.Fprintln(cmd.OutOrStdout(), lang)
			}
			return nil
		},
	}
}
