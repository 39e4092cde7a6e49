package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalworks/vendormetrics/internal/dataset"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a dataset file without loading it",
	Long:  "Decodes a CSV or XLSX dataset and reports its summary, or the first format error found. Nothing is loaded into the service.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := dataset.NewStore()
		if err := store.LoadFile(args[0]); err != nil {
			return err
		}

		info, err := store.Info()
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "%s is valid\n", args[0])
		return printJSON(os.Stdout, info)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
