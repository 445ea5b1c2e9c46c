package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/postmap/pkg/extractor"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List built-in extractor functions",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range extractor.NewRegistry().Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(functionsCmd)
}
