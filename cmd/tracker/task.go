package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/service/assignment"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/urfave/cli/v3"
)

func taskCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Create, inspect, update and delete tasks",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a task, optionally assigned to a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Task name", Required: true},
					&cli.StringFlag{Name: "deadline", Usage: "Deadline (RFC3339)", Required: true},
					&cli.StringFlag{Name: "description", Usage: "Task description"},
					&cli.BoolFlag{Name: "completed", Usage: "Mark the task completed"},
					&cli.StringFlag{Name: "assign", Usage: "ID of the user to assign the task to"},
				},
				Action: r.createTask,
			},
			{
				Name:      "get",
				Usage:     "Show a task",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.getTask,
			},
			{
				Name:  "list",
				Usage: "List tasks, oldest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "assigned-to", Usage: "Only tasks owned by this user ID"},
				},
				Action: r.listTasks,
			},
			{
				Name:      "update",
				Usage:     "Update a task; omitted fields keep their current values",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New task name"},
					&cli.StringFlag{Name: "deadline", Usage: "New deadline (RFC3339)"},
					&cli.StringFlag{Name: "description", Usage: "New task description"},
					&cli.BoolFlag{Name: "completed", Usage: "Completion state"},
					&cli.StringFlag{Name: "assign", Usage: "ID of the user to move the task to"},
					&cli.BoolFlag{Name: "unassign", Usage: "Remove the task's owner"},
				},
				Action: r.updateTask,
			},
			{
				Name:      "delete",
				Usage:     "Delete a task and drop it from every pending list naming it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.deleteTask,
			},
		},
	}
}

func (r *Runner) createTask(ctx context.Context, cmd *cli.Command) error {
	deadline, err := parseDeadline(cmd.String("deadline"))
	if err != nil {
		return err
	}
	owner, err := ownerFlag(cmd)
	if err != nil {
		return err
	}

	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	task, err := app.service.CreateTask(ctx, assignment.CreateTaskParams{
		Name:         cmd.String("name"),
		Description:  cmd.String("description"),
		Deadline:     deadline,
		Completed:    cmd.Bool("completed"),
		AssignedUser: owner,
	})
	if err != nil {
		return err
	}
	return r.writeJSON(task)
}

func (r *Runner) getTask(ctx context.Context, cmd *cli.Command) error {
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

	task, err := app.service.GetTask(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(task)
}

func (r *Runner) listTasks(ctx context.Context, cmd *cli.Command) error {
	var filter store.TaskFilter
	if raw := cmd.String("assigned-to"); raw != "" {
		owner, err := uuid.Parse(raw)
		if err != nil {
			return usageErrorf("invalid --assigned-to value %q: %v", raw, err)
		}
		filter = store.TasksAssignedTo(owner)
	}

	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tasks, err := app.service.ListTasks(ctx, filter)
	if err != nil {
		return err
	}
	return r.writeJSON(tasks)
}

// updateTask reads the task first so that flags the caller left out keep
// their current values, including the owner.
func (r *Runner) updateTask(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("assign") && cmd.Bool("unassign") {
		return usageErrorf("--assign and --unassign are mutually exclusive")
	}

	app, err := r.application(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	current, err := app.service.GetTask(ctx, id)
	if err != nil {
		return err
	}

	params := assignment.UpdateTaskParams{
		Name:         current.Name,
		Deadline:     current.Deadline,
		AssignedUser: current.AssignedUser,
	}
	if cmd.IsSet("name") {
		params.Name = cmd.String("name")
	}
	if cmd.IsSet("deadline") {
		if params.Deadline, err = parseDeadline(cmd.String("deadline")); err != nil {
			return err
		}
	}
	if cmd.IsSet("description") {
		description := cmd.String("description")
		params.Description = &description
	}
	if cmd.IsSet("completed") {
		completed := cmd.Bool("completed")
		params.Completed = &completed
	}
	switch {
	case cmd.Bool("unassign"):
		params.AssignedUser.Valid = false
	case cmd.IsSet("assign"):
		if params.AssignedUser, err = ownerFlag(cmd); err != nil {
			return err
		}
	}

	task, err := app.service.UpdateTask(ctx, id, params)
	if err != nil {
		return err
	}
	return r.writeJSON(task)
}

func (r *Runner) deleteTask(ctx context.Context, cmd *cli.Command) error {
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

	task, err := app.service.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(task)
}
