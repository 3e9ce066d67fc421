package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pixelwerk/augment/internal/consistency"
	"github.com/pixelwerk/augment/internal/transforms/legacy"
	v2 "github.com/pixelwerk/augment/internal/transforms/v2"
)

var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "Check constructor and dispatcher signature parity",
	Long: `Verifies that every v2 transform class accepts the stable constructor
parameters (minus the ones removed on purpose) and that the functional
surface keeps the same dispatcher names and parameters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		col := &collector{}
		col.run(func() {
			for _, c := range consistency.Cases() {
				consistency.CheckConstructorParity(col, c)
			}
			consistency.CheckDispatcherParity(col,
				legacy.Dispatchers(), v2.Dispatchers(), consistency.UntypedDispatchers())
		})

		out := cmd.OutOrStdout()
		for _, f := range col.failures {
			fmt.Fprintln(out, f)
		}
		if n := len(col.failures); n > 0 {
			return fmt.Errorf("%d signature mismatches", n)
		}
		fmt.Fprintln(out, "signatures match")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signaturesCmd)
}
