package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/httpapi"
	"github.com/jmylchreest/toasty/internal/model"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the live toasts in Waybar's custom module JSON format.

This is designed to be used with Waybar's custom module:

  "custom/toasts": {
    "exec": "toasty status",
    "interval": 2,
    "return-type": "json",
    "on-click": "toasty close --all"
  }

The output includes:
  - text: Number of live toasts
  - alt/class: Most severe variant (empty, normal, warning, critical, error)
  - tooltip: Breakdown by variant
  - percentage: Fill of the registry relative to its capacity`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	client, err := apiClient()
	if err != nil {
		return err
	}

	list, err := client.List(ctx)
	if err != nil {
		logger.Debug("failed to query toastyd", "error", err)
		return outputStatus(cmd.OutOrStdout(), WaybarStatus{Text: "", Alt: "error", Class: "error"})
	}
	return outputStatus(cmd.OutOrStdout(), generateStatus(list))
}

// generateStatus creates a WaybarStatus from a toast listing.
func generateStatus(list httpapi.ListResponse) WaybarStatus {
	if len(list.Toasts) == 0 {
		return WaybarStatus{
			Text:  "",
			Alt:   "empty",
			Class: "empty",
		}
	}

	counts := make(map[model.Variant]int)
	for _, t := range list.Toasts {
		counts[t.Variant]++
	}

	class := "normal"
	switch {
	case counts[model.VariantDanger] > 0:
		class = "critical"
	case counts[model.VariantWarning] > 0:
		class = "warning"
	}

	percentage := 0
	if list.Max > 0 {
		percentage = min(len(list.Toasts)*100/list.Max, 100)
	}

	return WaybarStatus{
		Text:       fmt.Sprintf("%d", len(list.Toasts)),
		Alt:        class,
		Tooltip:    buildTooltip(len(list.Toasts), counts),
		Class:      class,
		Percentage: percentage,
	}
}

// buildTooltip lists the count of each variant present.
func buildTooltip(total int, counts map[model.Variant]int) string {
	lines := []string{fmt.Sprintf("%d active", total)}
	for _, v := range model.ValidVariants() {
		if counts[v] > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", v, counts[v]))
		}
	}
	return strings.Join(lines, "\n")
}

// outputStatus writes the status as JSON.
func outputStatus(w io.Writer, status WaybarStatus) error {
	return json.NewEncoder(w).Encode(status)
}
