// Command telesport loads the Olympic medal dataset, prints the dashboard figures and
// renders the dashboard and country charts to PNG.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Akima-zed/teleSport/src/config"
	"github.com/Akima-zed/teleSport/src/logging"
)

var (
	configPath  string
	jsonLogs    bool
	withMetrics bool

	// flag overrides; only applied when set on the command line
	flagData    string
	flagURL     string
	flagSort    string
	flagLevel   string
	flagWidth   int
	flagTimeout time.Duration

	cfg             config.Config
	shutdownMetrics = func(context.Context) error { return nil }

	rootCmd = &cobra.Command{
		Use:           "telesport",
		Short:         "Olympic medal dashboard: summaries and charts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if jsonLogs {
				logging.SetOutput(os.Stderr, true)
			}
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &c)
			if err := c.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logging.SetLogLevel(c.LogLevel)
			cfg = c
			if withMetrics {
				shutdown, err := setupMetrics()
				if err != nil {
					return err
				}
				shutdownMetrics = shutdown
			}
			return nil
		},
	}
)

func applyFlags(cmd *cobra.Command, c *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("data") {
		c.DataFile = flagData
		c.DataURL = ""
	}
	if fl.Changed("url") {
		c.DataURL = flagURL
	}
	if fl.Changed("sort") {
		c.SortBy = flagSort
	}
	if fl.Changed("log-level") {
		c.LogLevel = flagLevel
	}
	if fl.Changed("width") {
		c.ChartWidth = flagWidth
	}
	if fl.Changed("timeout") {
		c.FetchTimeout = flagTimeout
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	pf.StringVar(&flagData, "data", "", "dataset JSON file")
	pf.StringVar(&flagURL, "url", "", "dataset URL (takes precedence over --data)")
	pf.StringVar(&flagSort, "sort", "", "country order: medals or alphabetical")
	pf.StringVar(&flagLevel, "log-level", "", "debug, info, warn or error")
	pf.IntVar(&flagWidth, "width", 0, "viewport width used to size charts")
	pf.DurationVar(&flagTimeout, "timeout", 0, "dataset fetch timeout")
	pf.BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
	pf.BoolVar(&withMetrics, "metrics", false, "print load and chart metrics to stderr on exit")

	rootCmd.AddCommand(summaryCmd, renderCmd, countryCmd, watchCmd)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if serr := shutdownMetrics(ctx); serr != nil {
		logging.Warnf("[metrics] shutdown: %v", serr)
	}
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
