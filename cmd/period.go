package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	periodStart   string
	periodEnd     string
	periodGroupBy string
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Aggregate metrics over a date window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, engine, err := loadedStore()
		if err != nil {
			return err
		}

		r, err := parseRange(periodStart, periodEnd)
		if err != nil {
			return err
		}

		pm, err := engine.PeriodMetrics(r, periodGroupBy)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, pm)
	},
}

func init() {
	periodCmd.Flags().StringVar(&periodStart, "start", "", "start date (YYYY-MM-DD, inclusive)")
	periodCmd.Flags().StringVar(&periodEnd, "end", "", "end date (YYYY-MM-DD, inclusive)")
	periodCmd.Flags().StringVar(&periodGroupBy, "group-by", "vendor", "grouping key: vendor or universe")
	rootCmd.AddCommand(periodCmd)
}
