package main

import (
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize the loaded dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, _, err := loadedStore()
		if err != nil {
			return err
		}

		info, err := store.Info()
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, info)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
