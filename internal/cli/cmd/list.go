package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered features and recorded decisions",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

type listRow struct {
	FeatureID   string `json:"featureId"`
	Label       string `json:"label"`
	ExtensionID string `json:"extensionId,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
	TotalCount  int    `json:"totalCount"`
}

func runList(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	var rows []listRow
	for _, feature := range app.Catalog.Features() {
		decisions := app.Registry.EnablementData(feature.ID)
		if len(decisions) == 0 {
			rows = append(rows, listRow{FeatureID: feature.ID, Label: feature.Label})
			continue
		}
		for _, d := range decisions {
			enabled := d.Enabled
			row := listRow{
				FeatureID:   feature.ID,
				Label:       feature.Label,
				ExtensionID: d.ExtensionID,
				Enabled:     &enabled,
			}
			if data := app.Registry.AccessData(d.ExtensionID, feature.ID); data != nil {
				row.TotalCount = data.TotalCount
			}
			rows = append(rows, row)
		}
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("FEATURE", "LABEL", "EXTENSION", "ENABLED", "ACCESSES")

	for _, r := range rows {
		enabled := "-"
		if r.Enabled != nil {
			enabled = strconv.FormatBool(*r.Enabled)
		}
		extension := r.ExtensionID
		if extension == "" {
			extension = "-"
		}
		t.Row(r.FeatureID, r.Label, extension, enabled, strconv.Itoa(r.TotalCount))
	}

	fmt.Println(t)
	return nil
}
