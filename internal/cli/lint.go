package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/MimeLyc/term-catalog-merger/internal/audit"
	"github.com/MimeLyc/term-catalog-merger/internal/catalog"
	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/internal/persistence"
	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
	"github.com/spf13/cobra"
)

// NewLintCommand creates and returns the lint subcommand
func NewLintCommand(app *App) *cobra.Command {
	opts := audit.Options{MinLength: app.Config.Lint.MinLength}

	cmd := &cobra.Command{
		Use:   "lint <catalog>...",
		Short: "Report suspicious terms in catalogs",
		Long: `Read one or more catalogs and report:
  - names that carry several different translations
  - values that read as the other language
  - empty values

Exit code: 0 if no issue is found, 1 otherwise`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), app, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVar(&opts.MinLength, "min-length", opts.MinLength, "shortest value whose language is checked")
	cmd.Flags().BoolVar(&opts.IgnoreEmpty, "ignore-empty", false, "do not report empty values")

	return cmd
}

func runLint(ctx context.Context, app *App, paths []string, opts audit.Options, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store := persistence.NewDocumentStore()
	collection := merge.NewCollection()

	for _, path := range paths {
		data, err := store.ReadDocument(ctx, path)
		if err != nil {
			return app.reportError(errOut, err)
		}
		terms, err := catalog.Parse(data)
		if err != nil {
			parseErr := merge.NewErrorWithCause(merge.ErrParse, merge.ReasonMalformedDocument, "failed to parse catalog", err).
				WithPath(path)
			return app.reportError(errOut, parseErr)
		}
		collection.AddAll(terms)
	}

	findings := audit.Check(collection.Terms(), opts)
	if len(findings) == 0 {
		successTitle.Fprintln(out, app.translate(termmap.KeyNoFinding))
		return nil
	}

	for _, f := range findings {
		fmt.Fprintln(out, f.String())
	}
	warningTitle.Fprint(errOut, app.translate(termmap.KeyFindings))
	fmt.Fprintf(errOut, ": %d\n", len(findings))

	return &reportedError{err: fmt.Errorf("%d issue(s) found", len(findings))}
}
