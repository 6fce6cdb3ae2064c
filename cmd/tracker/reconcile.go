package main

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/urfave/cli/v3"
)

func reconcileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Repair drift between task owners and users' pending lists",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Report repairs without writing them"},
		},
		Action: r.reconcile,
	}
}

// reconcile scans both collections, so it is not bounded by the per-operation timeout.
func (r *Runner) reconcile(ctx context.Context, cmd *cli.Command) error {
	app, err := r.application(ctx)
	if err != nil {
		return err
	}

	report, err := app.reconciler.Run(ctx, cmd.Bool("dry-run"))
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("reconciliation finished",
		slog.Bool("dry_run", report.DryRun),
		slog.Int("changes", report.Changes()))
	return r.writeJSON(report)
}
