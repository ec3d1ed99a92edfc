package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/internal/persistence"
	"github.com/MimeLyc/term-catalog-merger/internal/service"
	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
	"github.com/MimeLyc/term-catalog-merger/pkg/log"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

type scheduleOptions struct {
	directory string
	fileName  string
	output    string
	cronExpr  string
	once      bool
}

// NewScheduleCommand creates and returns the schedule subcommand
func NewScheduleCommand(app *App) *cobra.Command {
	opts := scheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Merge on a cron schedule",
		Long: `Run a merge now and again on every trigger of --cron, replacing --output
each time. A trigger is skipped when no matching catalog changed since the
previous merge and the output is still present.

Runs until interrupted. With --once, merges a single time and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context(), app, opts, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.directory, "dir", "d", app.Config.Merge.Directory, "directory to search")
	cmd.Flags().StringVarP(&opts.fileName, "name", "n", app.Config.Merge.FileName, "catalog file name to merge")
	cmd.Flags().StringVarP(&opts.output, "output", "o", app.Config.Merge.Output, "merged catalog (default <dir>/<name>.merged.xml)")
	cmd.Flags().StringVar(&opts.cronExpr, "cron", app.Config.Schedule.CronExpr, "five field cron expression")
	cmd.Flags().BoolVar(&opts.once, "once", false, "merge once and exit")

	return cmd
}

func runSchedule(ctx context.Context, app *App, opts scheduleOptions, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := *app.Config
	cfg.Merge.Directory = opts.directory
	cfg.Merge.FileName = opts.fileName
	cfg.Merge.Output = opts.output
	cfg.Schedule.CronExpr = opts.cronExpr

	c := cron.New()
	engine := merge.NewEngine(merge.WithLocale(cfg.Merge.Locale))
	svc, err := service.NewRunnableMergeService(cfg, engine, persistence.NewDocumentStore(), c)
	if err != nil {
		return app.reportError(errOut, err)
	}

	report, err := svc.RunOnce(ctx)
	if err != nil {
		return app.reportError(errOut, err)
	}
	fmt.Fprintf(errOut, "%s: %d. %s %s\n",
		app.translate(termmap.KeyFilesMatched), report.MatchedCount,
		app.translate(termmap.KeySaved), report.Output)
	if opts.once {
		return nil
	}

	if err := svc.Schedule(ctx); err != nil {
		return app.reportError(errOut, err)
	}
	if info, err := svc.NextTrigger(); err == nil {
		log.Info("Next merge: %s", info)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
