package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalworks/vendormetrics/internal/nlquery"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a natural-language question about the dataset",
	Long:  "Classifies the question into a metrics intent via Claude and runs the matching computation. Requires anthropic.key.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, engine, err := loadedStore()
		if err != nil {
			return err
		}

		interp, err := buildInterpreter(store, engine)
		if err != nil {
			return err
		}

		env, err := interp.Answer(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, env)
	},
}

var querySupportedCmd = &cobra.Command{
	Use:   "supported",
	Short: "List the supported question patterns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printJSON(os.Stdout, nlquery.SupportedPatterns())
	},
}

func init() {
	queryCmd.AddCommand(querySupportedCmd)
	rootCmd.AddCommand(queryCmd)
}
