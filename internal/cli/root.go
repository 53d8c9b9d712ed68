// Package cli implements the dialectiq command-line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/dialectiq/dialectiq/internal/cli.version=1.2.3"
	version = "0.4.1"
	logo    = "\n" +
		"     _ _       _           _   _\n" +
		"  __| (_) __ _| | ___  ___| |_(_) __ _\n" +
		" / _` | |/ _` | |/ _ \\/ __| __| |/ _` |\n" +
		"| (_| | | (_| | |  __/ (__| |_| | (_| |\n" +
		" \\__,_|_|\\__,_|_|\\___|\\___|\\__|_|\\__, |\n" +
		"                                    |_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "dialectiq",
	Short: "dialectiq - adversarial knowledge refinement pipeline",
	Long: color.CyanString(logo) +
		"\nPaired reasoning agents debate and research topics, distilling the outcome\ninto a versioned knowledge store that refines itself on a schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(debateCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(knowledgeCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(serveCmd)
}
