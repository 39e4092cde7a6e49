package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	drawdownStart string
	drawdownEnd   string
)

var drawdownCmd = &cobra.Command{
	Use:   "drawdown [vendor]",
	Short: "Analyze drawdown events",
	Long:  "Reports drawdown activity for one vendor, or across the whole dataset when no vendor is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, engine, err := loadedStore()
		if err != nil {
			return err
		}

		r, err := parseRange(drawdownStart, drawdownEnd)
		if err != nil {
			return err
		}

		vendor := ""
		if len(args) == 1 {
			vendor = args[0]
		}

		report, err := engine.DrawdownAnalysis(vendor, r)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, report)
	},
}

func init() {
	drawdownCmd.Flags().StringVar(&drawdownStart, "start", "", "start date (YYYY-MM-DD, inclusive)")
	drawdownCmd.Flags().StringVar(&drawdownEnd, "end", "", "end date (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(drawdownCmd)
}
