// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/7blacky7/sarcolor/envconfig"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "sarcolor",
		Short:         "SAR image colorization",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	serveCmd := newServeCmd()
	colorizeCmd := newColorizeCmd()
	pushCmd := newPushCmd()
	modelsCmd := newModelsCmd()
	historyCmd := newHistoryCmd()
	lutCmd := newLutCmd()
	versionCmd := newVersionCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["SARCOLOR_HOST"]}

	for _, cmd := range []*cobra.Command{
		serveCmd,
		colorizeCmd,
		pushCmd,
		modelsCmd,
		historyCmd,
	} {
		switch cmd {
		case colorizeCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["SARCOLOR_HOST"],
				envVars["SARCOLOR_MODELS"],
				envVars["SARCOLOR_BLOCK_SIZE"],
				envVars["SARCOLOR_TILE_THRESHOLD"],
				envVars["SARCOLOR_ONNX_LIBRARY"],
			})
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["SARCOLOR_DEBUG"],
				envVars["SARCOLOR_HOST"],
				envVars["SARCOLOR_ORIGINS"],
				envVars["SARCOLOR_MODELS"],
				envVars["SARCOLOR_BUCKET"],
				envVars["SARCOLOR_PUBLIC_URL"],
				envVars["SARCOLOR_DB"],
				envVars["SARCOLOR_NOHISTORY"],
				envVars["SARCOLOR_BLOCK_SIZE"],
				envVars["SARCOLOR_TILE_THRESHOLD"],
				envVars["SARCOLOR_NUM_PARALLEL"],
				envVars["SARCOLOR_MAX_QUEUE"],
				envVars["SARCOLOR_REQUEST_TIMEOUT"],
				envVars["SARCOLOR_ONNX_LIBRARY"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		colorizeCmd,
		pushCmd,
		modelsCmd,
		historyCmd,
		lutCmd,
		versionCmd,
	)

	return rootCmd
}
