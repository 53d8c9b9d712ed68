package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dialectiq version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dialectiq %s\n", version)
	},
}
