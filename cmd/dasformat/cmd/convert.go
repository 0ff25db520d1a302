package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DAS-RCN/RCN-DASformat/das"
	"github.com/DAS-RCN/RCN-DASformat/readers/asn"
	"github.com/DAS-RCN/RCN-DASformat/readers/febus"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> [out]",
	Short: "Convert a vendor-native recording to an exchange file",
	Long: `Import a vendor-native HDF5 recording (ASN OptoDAS or FEBUS A1) and
write it in the chosen exchange format. Without an output path the
conventional name derived from the recording start time is used.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor, _ := cmd.Flags().GetString("vendor")
		variantName, _ := cmd.Flags().GetString("variant")
		label, _ := cmd.Flags().GetString("label")

		v, err := parseVariant(variantName)
		if err != nil {
			return err
		}

		var rec *das.Record
		switch vendor {
		case "asn":
			rec, err = asn.Read(args[0])
		case "febus":
			rec, err = febus.Read(args[0])
		default:
			return fmt.Errorf("unknown vendor %q (want asn or febus)", vendor)
		}
		if err != nil {
			return err
		}

		path := ""
		if len(args) == 2 {
			path = args[1]
		} else if label != "" {
			path = das.AutoPath(".", label, rec, v)
		}
		written, err := das.Write(path, rec, v)
		if err != nil {
			return err
		}
		logger.Info("converted recording", "from", filepath.Base(args[0]),
			"to", written, "variant", v)
		return nil
	},
}

func init() {
	convertCmd.Flags().String("vendor", "asn", "vendor format of the input file (asn or febus)")
	convertCmd.Flags().String("variant", string(das.MiniDAS), "format variant to write (miniDAS or das)")
	convertCmd.Flags().String("label", "", "project label for the generated file name")
	rootCmd.AddCommand(convertCmd)
}
