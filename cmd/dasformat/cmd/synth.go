package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DAS-RCN/RCN-DASformat/das"
)

var synthCmd = &cobra.Command{
	Use:   "synth [path]",
	Short: "Write a reference file with synthetic data",
	Long: `Synthesize the reference dummy recording (10000 samples on 300
channels) and write it as a container file. Without a path the
conventional name under a YYYY-MM-DD day folder is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variantName, _ := cmd.Flags().GetString("variant")
		v, err := parseVariant(variantName)
		if err != nil {
			return err
		}
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		rec := das.NewDummyRecord(v)
		written, err := das.Write(path, rec, v)
		if err != nil {
			return err
		}
		logger.Info("wrote synthetic recording", "path", written, "variant", v,
			"nsmpl", rec.NSamples(), "nchnl", rec.NChannels())
		return nil
	},
}

func init() {
	synthCmd.Flags().String("variant", string(das.MiniDAS), "format variant to write (miniDAS or das)")
	rootCmd.AddCommand(synthCmd)
}
