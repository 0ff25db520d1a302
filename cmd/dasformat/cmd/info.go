package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DAS-RCN/RCN-DASformat/das"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the header and meta contents of a DAS file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withMeta, _ := cmd.Flags().GetBool("meta")
		return das.Info(cmd.OutOrStdout(), args[0], withMeta)
	},
}

func init() {
	infoCmd.Flags().Bool("meta", true, "list the user-defined meta leaves")
	rootCmd.AddCommand(infoCmd)
}
