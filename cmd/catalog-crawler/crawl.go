package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	crawlAll      bool
	crawlParallel int
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [site...]",
	Short: "Crawl sites and write one output file per site",
	Long:  "Runs one full crawl per named site followed by one write of its output file. A site that fails during discovery produces no file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, err := selectSites(args, crawlAll)
		if err != nil {
			return err
		}

		parallel := crawlParallel
		if !cmd.Flags().Changed("parallel") {
			parallel = appConfig.Crawl.ParallelSites
		}

		runner := newRunner()
		summaries, failed := runner.CrawlAll(cmd.Context(), sites, parallel)
		if err := runner.WriteMetrics(); err != nil {
			logger.Warn("metrics not written", zap.Error(err))
		}

		for _, name := range sites {
			if s, ok := summaries[name]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d products written to %s (%d skipped items, %s)\n",
					name, s.Products, s.Path, len(s.Errors), s.Duration.Round(time.Millisecond))
			}
		}
		if len(failed) > 0 {
			names := make([]string, 0, len(failed))
			for name := range failed {
				names = append(names, name)
			}
			sort.Strings(names)
			return fmt.Errorf("crawl failed for %v", names)
		}
		return nil
	},
}

func init() {
	crawlCmd.Flags().BoolVar(&crawlAll, "all", false, "crawl every configured site")
	crawlCmd.Flags().IntVarP(&crawlParallel, "parallel", "p", 1, "number of sites crawled at once")
}

// selectSites resolves the positional site names against the configuration.
func selectSites(args []string, all bool) ([]string, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all takes no site names")
		}
		return configuredSites(), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("name at least one site or pass --all")
	}
	for _, name := range args {
		if _, ok := appConfig.Sites[name]; !ok {
			return nil, fmt.Errorf("unknown site %q", name)
		}
	}
	return args, nil
}

func configuredSites() []string {
	names := make([]string, 0, len(appConfig.Sites))
	for name := range appConfig.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
