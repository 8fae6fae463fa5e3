// cmd_lut.go - LUT Werkzeuge
// Hauptfunktionen: LutGradientHandler, LutShowHandler
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/sarcolor/model/lut"
)

// LutGradientHandler - Schreibt eine Gradienten-Tabelle als Tabellendatei
func LutGradientHandler(cmd *cobra.Command, args []string) error {
	colors, err := cmd.Flags().GetStringSlice("colors")
	if err != nil {
		return err
	}
	dtypeName, err := cmd.Flags().GetString("dtype")
	if err != nil {
		return err
	}

	dt, err := lut.ParseDType(dtypeName)
	if err != nil {
		return err
	}

	c, err := lut.NewGradient(colors)
	if err != nil {
		return err
	}

	if err := lut.SaveTable(args[0], c.Table(), dt); err != nil {
		return err
	}
	cmd.Printf("wrote %s (%dx3 %s, %s)\n", args[0], lut.Levels, dt, strings.Join(colors, " "))
	return nil
}

// LutShowHandler - Zeigt Kopf und Stichproben einer Tabellendatei
func LutShowHandler(cmd *cobra.Command, args []string) error {
	t, err := lut.LoadTable(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("%s: %dx%d\n", args[0], t.Rows, t.Cols)
	if t.Rows == 0 || t.Cols == 0 {
		return nil
	}

	table := newTable(cmd.OutOrStdout(), []string{"ROW", "VALUES"})
	step := max(t.Rows/8, 1)
	for r := 0; r < t.Rows; r += step {
		vals := make([]string, t.Cols)
		for c := range t.Cols {
			vals[c] = fmt.Sprintf("%.3f", t.At(r, c))
		}
		table.Append([]string{fmt.Sprint(r), strings.Join(vals, " ")})
	}
	table.Render()
	return nil
}

// newLutCmd - Erstellt den lut Command mit Unterbefehlen
func newLutCmd() *cobra.Command {
	lutCmd := &cobra.Command{
		Use:   "lut",
		Short: "Create and inspect lookup tables",
	}

	gradientCmd := &cobra.Command{
		Use:   "gradient FILE",
		Short: "Write a gradient lookup table",
		Args:  cobra.ExactArgs(1),
		RunE:  LutGradientHandler,
	}
	gradientCmd.Flags().StringSlice("colors", lut.DefaultColors, "Anchor colors (#rrggbb) from dark to bright")
	gradientCmd.Flags().String("dtype", "f32", "Storage type (f32, f16, bf16)")

	showCmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Show a lookup table",
		Args:  cobra.ExactArgs(1),
		RunE:  LutShowHandler,
	}

	lutCmd.AddCommand(gradientCmd, showCmd)
	return lutCmd
}
