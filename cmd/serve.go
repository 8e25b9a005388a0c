package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"marionettist/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveConfigPath specifies a custom configuration directory path. When
// empty, the user config directory is used.
var serveConfigPath string

// serveCmd starts the control plane: discovery, the behaviour gateway and
// the REST API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the marionettist control plane",
	Long: `Starts the control plane. On startup the cluster is scanned once for
marionette services; afterwards the REST API serves configuration reads,
behaviour changes, rediscovery triggers and A/B test runs until the
process is terminated.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(&app.Config{
		Debug:      serveDebug,
		ConfigPath: serveConfigPath,
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

	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
}
