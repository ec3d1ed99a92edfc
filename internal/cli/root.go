package cli

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for termmerge
func NewRootCommand(app *App) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "termmerge",
		Short: "Merge translation term catalogs",
		Long: `termmerge finds every term catalog with a given file name below a
directory, removes duplicate terms and writes a single merged catalog.

A catalog is an XML document of <term> elements, each holding a <name>,
an <englishValue> and a <frenchValue>.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setLanguage(lang)
		},
		// Commands print their own translated errors
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&lang, "language", "l", "", "message language (en or fr)")

	cmd.AddCommand(NewMergeCommand(app))
	cmd.AddCommand(NewLintCommand(app))
	cmd.AddCommand(NewScheduleCommand(app))

	return cmd
}
