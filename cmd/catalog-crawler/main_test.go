package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/williampepple1/catalog-crawler/internal/config"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"crawl", "validate", "sites"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestCrawlFlags(t *testing.T) {
	flag := crawlCmd.Flags().Lookup("parallel")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.DefValue)
	assert.NotNil(t, crawlCmd.Flags().Lookup("all"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestSelectSites(t *testing.T) {
	appConfig = config.Default()

	all, err := selectSites(nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{config.ForeignFortune, config.LeChocolat, config.TraderJoes}, all)

	named, err := selectSites([]string{config.TraderJoes}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{config.TraderJoes}, named)

	_, err = selectSites(nil, false)
	assert.Error(t, err)
	_, err = selectSites([]string{"amazon"}, false)
	assert.Error(t, err)
	_, err = selectSites([]string{config.TraderJoes}, true)
	assert.Error(t, err)
}

func TestSitesCommandListsDefaults(t *testing.T) {
	appConfig = config.Default()
	var out bytes.Buffer
	sitesCmd.SetOut(&out)

	require.NoError(t, sitesCmd.RunE(sitesCmd, nil))
	assert.Contains(t, out.String(), "traderjoes")
	assert.Contains(t, out.String(), "https://www.lechocolat-alainducasse.com/uk/")
}

func TestCloseLoggerAfterFailedCommand(t *testing.T) {
	t.Cleanup(func() { logger, closeLog = nil, nil })

	cmd := &cobra.Command{
		Use:           "fail",
		SilenceErrors: true,
		RunE:          func(*cobra.Command, []string) error { return errors.New("crawl failed") },
	}
	var closed int
	logger = zap.NewNop()
	closeLog = func() error {
		closed++
		return nil
	}

	cmd.SetArgs(nil)
	require.Error(t, cmd.Execute())
	closeLogger()
	assert.Equal(t, 1, closed)
	assert.Nil(t, logger)

	closeLogger()
	assert.Equal(t, 1, closed)
}
