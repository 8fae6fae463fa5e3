// cmd_list.go - Models und History Commands
// Hauptfunktionen: ModelsHandler, HistoryHandler
package cmd

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/sarcolor/api"
)

// newTable - Tabelle im Stil aller sarcolor Listings
func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// modelRows - Zeilen fuer die Models-Tabelle
func modelRows(models *api.ModelsResponse) [][]string {
	var data [][]string
	for _, c := range models.Categories {
		def := ""
		if c.Default {
			def = "*"
		}
		data = append(data, []string{strconv.Itoa(c.ID), c.Name, c.Backend, def})
	}
	return data
}

// ModelsHandler - Listet die Kategorien des Servers auf
func ModelsHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	models, err := client.Models(cmd.Context())
	if err != nil {
		return err
	}

	table := newTable(os.Stdout, []string{"ID", "NAME", "BACKEND", "DEFAULT"})
	table.AppendBulk(modelRows(models))
	table.Render()

	classifier := "none (default category)"
	if models.Classifier {
		classifier = "loaded"
	}
	cmd.Printf("\nclassifier: %s, input size: %d, block: %d, tiling above: %d\n", classifier, models.InputSize, models.BlockSize, models.Threshold)
	return nil
}

// historyRows - Zeilen fuer die History-Tabelle
func historyRows(jobs []api.Job, now time.Time) [][]string {
	var data [][]string
	for _, j := range jobs {
		grid := "-"
		if j.Rows > 0 {
			grid = strconv.Itoa(j.Rows) + "x" + strconv.Itoa(j.Cols)
		}
		status := j.Status
		if j.Error != "" {
			status += ": " + j.Error
		}
		data = append(data, []string{
			j.ID[:min(8, len(j.ID))],
			j.ImageID,
			j.Path,
			grid,
			j.Majority,
			j.Duration.Round(time.Millisecond).String(),
			humanTime(j.CreatedAt, now),
			status,
		})
	}
	return data
}

// humanTime - Relative Zeitangabe wie "3 minutes ago"
func humanTime(t, now time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Less than a minute ago"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	default:
		return plural(int(d.Hours()/24), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

// HistoryHandler - Zeigt die letzten Colorize-Jobs
func HistoryHandler(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	history, err := client.History(cmd.Context(), limit)
	if err != nil {
		return err
	}

	table := newTable(os.Stdout, []string{"ID", "IMAGE", "PATH", "GRID", "MAJORITY", "DURATION", "CREATED", "STATUS"})
	table.AppendBulk(historyRows(history.Jobs, time.Now()))
	table.Render()
	return nil
}

// newModelsCmd - Erstellt den models Command
func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Aliases: []string{"ls"},
		Short:   "List the categories of the running server",
		Args:    cobra.ExactArgs(0),
		PreRunE: checkServerHeartbeat,
		RunE:    ModelsHandler,
	}
}

// newHistoryCmd - Erstellt den history Command
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recent colorize requests",
		Args:    cobra.ExactArgs(0),
		PreRunE: checkServerHeartbeat,
		RunE:    HistoryHandler,
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	return cmd
}
