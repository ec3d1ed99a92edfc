package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/internal/persistence"
	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
	"github.com/spf13/cobra"
)

type mergeOptions struct {
	directory string
	fileName  string
	output    string
	force     bool
}

// NewMergeCommand creates and returns the merge subcommand
func NewMergeCommand(app *App) *cobra.Command {
	opts := mergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge every catalog with the given name below a directory",
		Long: `Merge every catalog named --name found anywhere below --dir.

File names are compared without regard to case. Terms are kept in the order
they are first seen; a term is dropped only when its name and both values
repeat an earlier term. Without --output the merged catalog goes to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), app, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.directory, "dir", "d", app.Config.Merge.Directory, "directory to search")
	cmd.Flags().StringVarP(&opts.fileName, "name", "n", app.Config.Merge.FileName, "catalog file name to merge")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the merged catalog to this file")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "replace an existing output without asking")

	return cmd
}

func runMerge(ctx context.Context, app *App, opts mergeOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engine := merge.NewEngine(merge.WithLocale(app.Config.Merge.Locale))

	var progress merge.ProgressFunc
	if app.Interactive {
		progress = func(current, total int) {
			fmt.Fprintf(errOut, "\r%d/%d", current, total)
			if current == total {
				fmt.Fprintln(errOut)
			}
		}
	}

	result, err := engine.Run(ctx, opts.directory, opts.fileName, progress)
	if err != nil {
		return app.reportError(errOut, err)
	}

	if opts.output == "" {
		if _, err := io.WriteString(out, result.Document); err != nil {
			return err
		}
	} else {
		store := persistence.NewDocumentStore(persistence.WithConfirm(app.confirmOverwrite(opts.force, errOut)))
		if err := store.WriteDocument(ctx, opts.output, result.Document); err != nil {
			return app.reportError(errOut, err)
		}
	}
	app.remember(opts.directory, opts.fileName)

	successTitle.Fprint(errOut, app.translate(termmap.KeySearchOver))
	fmt.Fprintf(errOut, ". %s: %d, %s: %d\n",
		app.translate(termmap.KeyFilesMatched), result.MatchedCount,
		app.translate(termmap.KeyTermsMerged), len(result.Terms))
	if opts.output != "" {
		fmt.Fprintf(errOut, "%s %s\n", app.translate(termmap.KeySaved), opts.output)
	}
	return nil
}

// confirmOverwrite asks on a terminal. Without a terminal, existing files
// are only replaced with --force.
func (a *App) confirmOverwrite(force bool, errOut io.Writer) persistence.ConfirmFunc {
	if force {
		return nil
	}
	if !a.Interactive {
		return func(string) bool { return false }
	}

	reader := bufio.NewReader(a.In)
	return func(path string) bool {
		warningTitle.Fprint(errOut, path)
		fmt.Fprintf(errOut, ": %s [y/N] ", a.translate(termmap.KeyOverwriteConfirm))

		answer, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes", "o", "oui":
			return true
		default:
			return false
		}
	}
}
