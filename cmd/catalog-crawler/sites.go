package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List configured sites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SITE\tKIND\tBASE URL\tREPORT KEY")
		for _, name := range configuredSites() {
			s := appConfig.Sites[name]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, s.Kind, s.BaseURL, s.Validation.ReportKey)
		}
		return w.Flush()
	},
}
