package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/service/assignment"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/urfave/cli/v3"
)

func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Create, inspect, update and delete users",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a user and claim the listed tasks for them",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "User name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Unique email address", Required: true},
					&cli.StringSliceFlag{Name: "pending", Usage: "ID of a task to assign (repeatable)"},
				},
				Action: r.createUser,
			},
			{
				Name:      "get",
				Usage:     "Show a user",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.getUser,
			},
			{
				Name:  "list",
				Usage: "List users, oldest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pending-task", Usage: "Only users whose pending list names this task ID"},
				},
				Action: r.listUsers,
			},
			{
				Name:        "update",
				Usage:       "Update a user; --pending or --clear-pending replace their task set",
				Description: renameNote,
				Arguments:   []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New user name"},
					&cli.StringFlag{Name: "email", Usage: "New email address"},
					&cli.StringSliceFlag{Name: "pending", Usage: "ID of a task the user should own (repeatable)"},
					&cli.BoolFlag{Name: "clear-pending", Usage: "Release every task the user owns"},
				},
				Action: r.updateUser,
			},
			{
				Name:      "delete",
				Usage:     "Delete a user and unassign their tasks",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.deleteUser,
			},
		},
	}
}

func (r *Runner) createUser(ctx context.Context, cmd *cli.Command) error {
	pending, err := parseIDs("pending", cmd.StringSlice("pending"))
	if err != nil {
		return err
	}

	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user, err := app.service.CreateUser(ctx, assignment.CreateUserParams{
		Name:         cmd.String("name"),
		Email:        cmd.String("email"),
		PendingTasks: pending,
	})
	if err != nil {
		return err
	}
	return r.writeJSON(user)
}

func (r *Runner) getUser(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user, err := app.service.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(user)
}

func (r *Runner) listUsers(ctx context.Context, cmd *cli.Command) error {
	var filter store.UserFilter
	if raw := cmd.String("pending-task"); raw != "" {
		taskID, err := uuid.Parse(raw)
		if err != nil {
			return usageErrorf("invalid --pending-task value %q: %v", raw, err)
		}
		filter = store.UsersWithPendingTask(taskID)
	}

	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	users, err := app.service.ListUsers(ctx, filter)
	if err != nil {
		return err
	}
	return r.writeJSON(users)
}

func (r *Runner) updateUser(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("pending") && cmd.Bool("clear-pending") {
		return usageErrorf("--pending and --clear-pending are mutually exclusive")
	}

	// nil leaves the user's tasks untouched.
	var pending []uuid.UUID
	switch {
	case cmd.Bool("clear-pending"):
		pending = []uuid.UUID{}
	case cmd.IsSet("pending"):
		if pending, err = parseIDs("pending", cmd.StringSlice("pending")); err != nil {
			return err
		}
	}

	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	current, err := app.service.GetUser(ctx, id)
	if err != nil {
		return err
	}

	params := assignment.UpdateUserParams{
		Name:         current.Name,
		Email:        current.Email,
		PendingTasks: pending,
	}
	if cmd.IsSet("name") {
		params.Name = cmd.String("name")
	}
	if cmd.IsSet("email") {
		params.Email = cmd.String("email")
	}

	user, err := app.service.UpdateUser(ctx, id, params)
	if err != nil {
		return err
	}
	return r.writeJSON(user)
}

func (r *Runner) deleteUser(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user, err := app.service.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(user)
}
