package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marionettist/internal/app"
	"marionettist/internal/formatting"

	"github.com/spf13/cobra"
)

var discoverDebug bool
var discoverConfigPath string

// discoverCmd runs a single discovery pass and prints the registered
// services without starting the API.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the cluster for marionette services once and print them",
	Args:  cobra.NoArgs,
	RunE:  runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(&app.Config{
		Debug:      discoverDebug,
		ConfigPath: discoverConfigPath,
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

	count, err := application.Discovery().Run(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	formatting.RenderServiceTable(os.Stdout, application.Registry())
	fmt.Printf("%d marionette services registered\n", count)
	return nil
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().BoolVar(&discoverDebug, "debug", false, "Enable debug logging")
	discoverCmd.Flags().StringVar(&discoverConfigPath, "config-path", "", "Custom configuration directory path")
}
