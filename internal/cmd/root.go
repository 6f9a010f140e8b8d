package cmd

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reposnap/pkg/config"
)

var (
	configPath string
	verbose    bool

	// appConfig is loaded before any subcommand runs
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reposnap",
	Short: "Assemble point-in-time snapshots of GitHub repositories",
	Long: `Reposnap fetches a repository resource and its issues from a GitHub-style
REST API and assembles them into a single snapshot: repository statistics plus
a flattened list of issues with their labels and assignees.

Snapshots can be rendered as JSON, YAML or a human-readable summary.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadAppConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (default ~/.reposnap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadAppConfig(_ *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)

	if configPath != "" {
		cfg, err = config.LoadConfigFromPath(configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg.LogLevel, verbose)
	appConfig = cfg
	return nil
}

func setupLogging(level string, debug bool) {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logger.TextFormatter{FullTimestamp: true})

	if debug {
		logger.SetLevel(logger.DebugLevel)
		return
	}

	parsed, err := logger.ParseLevel(level)
	if err != nil {
		parsed = logger.WarnLevel
	}
	logger.SetLevel(parsed)
}
