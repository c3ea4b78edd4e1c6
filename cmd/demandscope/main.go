package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "demandscope",
		Short: "Aggregate and analyze user demand signals from social platforms",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(collectCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())
	root.AddCommand(statsCmd())

	return root
}

func collectCmd() *cobra.Command {
	var platforms []string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run platform collectors once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(platforms)
		},
	}

	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "specific platforms to collect (reddit,github,twitter)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func statsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
