package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/williampepple1/catalog-crawler/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every site output and write the consolidated report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := pipeline.New(appConfig, nil, logger, nil)
		report, path, err := runner.Validate(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "validated %d sites, report written to %s\n", len(report.Sites), path)
		for key, msg := range report.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", key, msg)
		}
		return nil
	},
}
