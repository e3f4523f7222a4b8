package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/featgate/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Write the default config file and its JSON schema",
	Long: `Creates the config directory with a commented default config.yaml
(when none exists) and regenerates config.schema.json next to it.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := config.WriteDefault()
		if err != nil {
			return err
		}
		if err := config.GenerateSchemaFile(); err != nil {
			return err
		}
		fmt.Printf("config: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
