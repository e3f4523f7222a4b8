package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/featgate/internal/domain/entity"
	"github.com/bnema/featgate/internal/infrastructure/dialog"
)

var (
	accessExtensionName string
	accessAssumeYes     bool
	accessAssumeNo      bool
)

var accessCmd = &cobra.Command{
	Use:   "access <extension-id> <feature-id>",
	Short: "Request gated access to a feature",
	Long: `Runs the access gate for the given pair: prompts for confirmation on
first use, then counts the access. Exits non-zero when access is denied.`,
	Args: cobra.ExactArgs(2),
	RunE: runAccess,
}

func init() {
	rootCmd.AddCommand(accessCmd)
	accessCmd.Flags().StringVar(&accessExtensionName, "extension-name", "", "display name shown in the confirmation prompt")
	accessCmd.Flags().BoolVar(&accessAssumeYes, "yes", false, "answer any confirmation prompt with allow")
	accessCmd.Flags().BoolVar(&accessAssumeNo, "no", false, "answer any confirmation prompt with deny")
	accessCmd.MarkFlagsMutuallyExclusive("yes", "no")
}

func runAccess(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	switch {
	case accessAssumeYes:
		app.Registry.SetPresenter(dialog.AllowAll{})
	case accessAssumeNo:
		app.Registry.SetPresenter(dialog.DenyAll{})
	}

	ext := entity.Extension{ID: args[0], DisplayName: accessExtensionName}
	featureID := args[1]

	if !app.Registry.GetAccess(app.Ctx(), ext, featureID) {
		return fmt.Errorf("access to %s denied for %s", featureID, ext.ID)
	}

	data := app.Registry.AccessData(ext.ID, featureID)
	if data != nil && data.Current != nil {
		fmt.Printf("access granted (session: %d, total: %d)\n", data.Current.Count, data.TotalCount)
	} else {
		fmt.Println("access granted")
	}
	return nil
}
