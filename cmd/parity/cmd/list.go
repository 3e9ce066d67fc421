package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pixelwerk/augment/internal/consistency"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered transform pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, c := range consistency.Cases() {
			flags := ""
			if c.SupportsBitmap {
				flags += " [bitmap]"
			}
			if c.Tol != (consistency.Tolerance{}) {
				flags += fmt.Sprintf(" [rtol=%v atol=%v]", c.Tol.Rtol, c.Tol.Atol)
			}
			fmt.Fprintf(out, "%s%s\n", c.Name(), flags)
			for _, v := range c.Variants {
				fmt.Fprintf(out, "  - %s\n", v.Desc)
			}
		}
		if missing := consistency.MissingCoverage(); len(missing) > 0 {
			fmt.Fprintf(out, "\nuncovered: %v\n", missing)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
