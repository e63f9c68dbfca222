// Package commands implements the sparqlassist CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/sparqlassist/config"
)

var (
	flagConfig   string
	flagLogLevel string
)

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "sparqlassist",
		Short: "Schema-validated SPARQL generation for bioinformatics endpoints",
		Long: `sparqlassist turns natural-language questions into SPARQL queries over
bioinformatics endpoints, validating every generated query against the
endpoint's VoID-derived schema before answering.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flagLogLevel)
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: layered lookup)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newAskCmd(),
		newValidateCmd(),
		newSchemaCmd(),
		newEndpointsCmd(),
		newIndexCmd(),
		newServeCmd(),
		newVersionCmd(version),
	)
	return root
}

// Execute runs the CLI.
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		cfg, err := config.LoadFromFile(flagConfig)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.NewLoader(slog.Default()).Load()
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
