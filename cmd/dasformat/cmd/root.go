package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/DAS-RCN/RCN-DASformat/das"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:   "dasformat",
	Short: "Read, write, inspect and compare DAS exchange files",
	Long: `dasformat works with the miniDAS and IRIS DAS exchange formats for
Distributed Acoustic Sensing recordings: synthesize reference files,
print their headers, render waterfall plots, compare records after
format conversions, and import vendor-native recordings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func parseVariant(name string) (das.Variant, error) {
	for _, v := range das.Variants() {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown format variant %q (want %v)", name, das.Variants())
}
