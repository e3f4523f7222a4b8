package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <extension-id> <feature-id>",
	Short: "Show recorded access data for a pair",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	extensionID, featureID := args[0], args[1]

	out := struct {
		ExtensionID  string     `json:"extensionId"`
		FeatureID    string     `json:"featureId"`
		Enabled      bool       `json:"enabled"`
		TotalCount   int        `json:"totalCount"`
		SessionCount int        `json:"sessionCount,omitempty"`
		LastAccessed *time.Time `json:"lastAccessed,omitempty"`
		Status       any        `json:"status,omitempty"`
	}{
		ExtensionID: extensionID,
		FeatureID:   featureID,
		Enabled:     app.Registry.IsEnabled(extensionID, featureID),
	}

	if data := app.Registry.AccessData(extensionID, featureID); data != nil {
		out.TotalCount = data.TotalCount
		if data.Current != nil {
			out.SessionCount = data.Current.Count
			if !data.Current.LastAccessed.IsZero() {
				t := data.Current.LastAccessed
				out.LastAccessed = &t
			}
			if data.Current.Status != nil {
				out.Status = data.Current.Status
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
