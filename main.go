package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yo1233/stock-forecast-analyzer/cmd"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var rootCmd = &cobra.Command{
		Use:           "stock-forecast",
		Short:         "Fetch and rank analyst price-target forecasts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	var cfgPath string
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "config file path")

	var set, csvOut string
	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Analyze a symbol set and persist the results",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Run(cfgPath, set, csvOut)
		},
	}
	runCmd.Flags().StringVar(&set, "set", "all", "symbol set to analyze (sector name, configured set, or 'all')")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "export ranked results to this CSV file")

	var quoteCmd = &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Analyze individual symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Quote(cfgPath, args)
		},
	}

	var screenSet, screenCSV string
	var minForecast float64
	var screenCmd = &cobra.Command{
		Use:   "screen",
		Short: "Analyze a symbol set and keep only strong forecasts",
		RunE: func(c *cobra.Command, args []string) error {
			var min *float64
			if c.Flags().Changed("min") {
				min = &minForecast
			}
			return cmd.Screen(cfgPath, screenSet, min, screenCSV)
		},
	}
	screenCmd.Flags().StringVar(&screenSet, "set", "all", "symbol set to screen")
	screenCmd.Flags().Float64Var(&minForecast, "min", 15, "minimum forecast percentage to keep")
	screenCmd.Flags().StringVar(&screenCSV, "csv", "", "export kept results to this CSV file")

	var reportCSV string
	var reportCmd = &cobra.Command{
		Use:   "report FILE",
		Short: "Render a saved result snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Report(args[0], reportCSV)
		},
	}
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "export ranked results to this CSV file")

	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Run the configured set on a cron schedule",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Watch(cfgPath)
		},
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
