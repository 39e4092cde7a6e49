package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	vendorStart string
	vendorEnd   string
)

var vendorCmd = &cobra.Command{
	Use:   "vendor <name>",
	Short: "Compute performance metrics for one vendor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, engine, err := loadedStore()
		if err != nil {
			return err
		}

		r, err := parseRange(vendorStart, vendorEnd)
		if err != nil {
			return err
		}

		m, err := engine.VendorMetrics(args[0], r)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, m)
	},
}

func init() {
	vendorCmd.Flags().StringVar(&vendorStart, "start", "", "start date (YYYY-MM-DD, inclusive)")
	vendorCmd.Flags().StringVar(&vendorEnd, "end", "", "end date (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(vendorCmd)
}
