package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <extension-id> <feature-id>",
	Short: "Allow an extension to use a feature",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return setEnablement(args[0], args[1], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <extension-id> <feature-id>",
	Short: "Forbid an extension from using a feature",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return setEnablement(args[0], args[1], false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func setEnablement(extensionID, featureID string, enabled bool) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if err := app.Registry.SetEnablement(app.Ctx(), extensionID, featureID, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("%s %s for %s\n", featureID, state, extensionID)
	return nil
}
