package main

import (
	"os"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [vendor...]",
	Short: "Rank vendors against each other",
	Long:  "Compares the named vendors, or every vendor in the dataset when none are given, ranking by average signal strength and by stability.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, engine, err := loadedStore()
		if err != nil {
			return err
		}

		cmp, err := engine.Compare(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, cmp)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
