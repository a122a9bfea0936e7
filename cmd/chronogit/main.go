package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chronogit/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger

	// Loaded configuration
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chronogit",
	Short: "chronogit - backdated commit generator for GitHub activity",
	Long: `chronogit creates git commits with historical timestamps so your
GitHub contribution graph shows activity for past years.

You describe the dates with a simple expression (a year, a month, a full
date, a range, or a list) and chronogit generates deterministic UTC
timestamps, creates the commits, and pushes them.

Run without arguments to start the interactive workflow.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "chronogit" && cmd.CalledAs() == "chronogit" {
			return loadConfig()
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return loadConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive workflow
		return runInteractive(cmd, args)
	},
}

func loadConfig() error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.chronogit/config.yaml)")

	rootCmd.AddCommand(travelCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(interactiveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
