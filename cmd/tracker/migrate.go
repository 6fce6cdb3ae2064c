package main

import (
	"context"
	"slices"
	"strings"

	"github.com/phrazzld/tasktrack/internal/platform/postgres"
	"github.com/urfave/cli/v3"
)

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Manage the database schema (" + strings.Join(postgres.MigrationCommands, ", ") + ")",
		ArgsUsage: "<command>",
		Arguments: []cli.Argument{&cli.StringArg{Name: "command", Value: "up"}},
		Action:    r.migrate,
	}
}

func (r *Runner) migrate(ctx context.Context, cmd *cli.Command) error {
	command := cmd.StringArg("command")
	if !slices.Contains(postgres.MigrationCommands, command) {
		return usageErrorf("unknown migration command %q, expected one of %s",
			command, strings.Join(postgres.MigrationCommands, ", "))
	}

	app, err := r.application(ctx)
	if err != nil {
		return err
	}

	result, err := app.migrate(ctx, command)
	if err != nil {
		return err
	}
	return r.writeJSON(result)
}
