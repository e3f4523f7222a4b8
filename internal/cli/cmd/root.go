// Package cmd provides Cobra CLI commands for featgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/featgate/internal/cli"
)

var (
	app     *cli.App
	rootCmd = &cobra.Command{
		Use:   "featgate",
		Short: "Consent-gated feature access for editor extensions",
		Long: `Featgate tracks which extensions may use which named features,
asks for confirmation on first use, counts accesses, and persists the
decisions to the user profile.

Feature declarations come from JSON manifests in the configured
manifest directories; enablement state and lifetime access counters
live in the profile store (JSON file or SQLite).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "schema":
				return nil
			}

			var err error
			app, err = cli.NewApp(cli.DefaultPresenter())
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetVersion wires build information into the root command.
func SetVersion(version string) {
	rootCmd.Version = version
}
