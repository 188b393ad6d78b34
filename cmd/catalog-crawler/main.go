package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/williampepple1/catalog-crawler/internal/browser"
	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/internal/crawler"
	"github.com/williampepple1/catalog-crawler/internal/log"
	"github.com/williampepple1/catalog-crawler/internal/pipeline"
	"github.com/williampepple1/catalog-crawler/internal/proxy"
)

var (
	configFile string

	appConfig *config.AppConfig
	logger    *zap.Logger
	closeLog  func() error
)

var rootCmd = &cobra.Command{
	Use:          "catalog-crawler",
	Short:        "Headless catalog crawler and output validator",
	Long:         "Drives headless Chrome through shop categories, pages and products, writes one JSON file per site and validates the outputs.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configFile != "" {
			appConfig, err = config.Load(configFile)
		} else {
			appConfig = config.Default()
			err = appConfig.Validate()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		l, closer, err := log.New(appConfig.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger, closeLog = l, closer.Close
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to configuration file (YAML)")
	rootCmd.AddCommand(crawlCmd, validateCmd, sitesCmd)
}

// newRunner builds a pipeline backed by headless Chrome.
func newRunner() *pipeline.Runner {
	chrome := browser.NewChrome(&appConfig.Browser, proxy.NewManager(&appConfig.Proxies), logger)
	return pipeline.New(appConfig, chrome, logger, crawler.NewMetrics())
}

// closeLogger flushes and closes the log outputs opened by the root command.
// It also runs after a failed command, since cobra skips post-run hooks then.
func closeLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
	if closeLog != nil {
		_ = closeLog()
	}
	logger, closeLog = nil, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLogger()
	if err != nil {
		os.Exit(1)
	}
}
