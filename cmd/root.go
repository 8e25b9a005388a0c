package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the entry point when marionettist is called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "marionettist",
	Short: "Behavioural A/B testing for marionette services on Kubernetes",
	Long: `marionettist discovers marionette-instrumented services in a Kubernetes
cluster, switches their behaviours at runtime and ranks every combination
of behaviours by externally observed metrics.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "marionettist version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
