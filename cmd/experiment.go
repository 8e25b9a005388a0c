package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marionettist/internal/app"
	"marionettist/internal/formatting"

	"github.com/spf13/cobra"
)

var experimentDebug bool
var experimentConfigPath string

// experimentDuration is the total wall-clock time shared equally by all
// generated configurations. Zero means the configured default.
var experimentDuration time.Duration

// experimentCmd discovers the cluster, runs a full combinatorial A/B test
// and prints the ranked outcome.
var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run a full A/B test over every behaviour combination",
	Long: `Scans the cluster for marionette services, generates every combination
of their variation point behaviours, runs each combination for an equal
share of the total duration and prints the configurations ranked by the
configured metrics.`,
	Args: cobra.NoArgs,
	RunE: runExperiment,
}

func runExperiment(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(&app.Config{
		Debug:      experimentDebug,
		ConfigPath: experimentConfigPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := application.Discovery().Run(ctx); err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	totalDuration := experimentDuration
	if totalDuration <= 0 {
		totalDuration = application.ExperimentDuration()
	}

	result, err := application.Runner().Run(ctx, totalDuration)
	if err != nil {
		return fmt.Errorf("experiment failed: %w", err)
	}

	formatting.RenderRankedResults(os.Stdout, result)
	return nil
}

func init() {
	rootCmd.AddCommand(experimentCmd)

	experimentCmd.Flags().BoolVar(&experimentDebug, "debug", false, "Enable debug logging")
	experimentCmd.Flags().StringVar(&experimentConfigPath, "config-path", "", "Custom configuration directory path")
	experimentCmd.Flags().DurationVar(&experimentDuration, "duration", 0, "Total experiment duration shared by all configurations (default from config)")
}
