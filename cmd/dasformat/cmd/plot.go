package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DAS-RCN/RCN-DASformat/das"
)

var plotCmd = &cobra.Command{
	Use:   "plot <file> <image>",
	Short: "Render a time-distance waterfall of a DAS file",
	Long: `Render the trace matrix as a waterfall image (png, pdf or svg,
chosen by the output extension). With --spacing the lateral axis is
labeled in meters along the cable instead of channel numbers.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spacing, _ := cmd.Flags().GetFloat64("spacing")
		scaled, _ := cmd.Flags().GetBool("scaled")
		rec, _, err := das.Read(args[0])
		if err != nil {
			return err
		}
		if scaled {
			rec.ApplyScaling()
		}
		if err := das.SaveWaterfall(rec, spacing, args[1]); err != nil {
			return err
		}
		logger.Info("wrote waterfall", "path", args[1])
		return nil
	},
}

func init() {
	plotCmd.Flags().Float64("spacing", 0, "channel spacing in meters (0 plots channel numbers)")
	plotCmd.Flags().Bool("scaled", false, "apply the scale factor before plotting")
	rootCmd.AddCommand(plotCmd)
}
