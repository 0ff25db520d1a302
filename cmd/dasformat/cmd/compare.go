package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DAS-RCN/RCN-DASformat/das"
)

var compareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Compare two DAS files for round-trip fidelity",
	Long: `Read both files and compare every header field, the trace matrix
and the meta tree within a numeric tolerance. All discrepancies are
listed; the command fails when any is found.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, _ := cmd.Flags().GetFloat64("abs")
		rel, _ := cmd.Flags().GetFloat64("rel")

		a, _, err := das.Read(args[0])
		if err != nil {
			return err
		}
		b, _, err := das.Read(args[1])
		if err != nil {
			return err
		}

		equal, diffs := das.Compare(a, b, das.Tolerance{Abs: abs, Rel: rel})
		for _, d := range diffs {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		if !equal {
			return fmt.Errorf("%d discrepancies between %s and %s", len(diffs), args[0], args[1])
		}
		logger.Info("records are equal within tolerance", "abs", abs, "rel", rel)
		return nil
	},
}

func init() {
	compareCmd.Flags().Float64("abs", das.DefaultTolerance.Abs, "absolute tolerance for numeric fields")
	compareCmd.Flags().Float64("rel", das.DefaultTolerance.Rel, "relative tolerance for numeric fields")
	rootCmd.AddCommand(compareCmd)
}
