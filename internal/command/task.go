package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/fastygo/taskboard/pkg/client"
)

const (
	paramStatus      = "status"
	paramSortBy      = "sort-by"
	paramOrder       = "order"
	paramSearch      = "search"
	paramTitle       = "title"
	paramDescription = "description"
	paramDue         = "due"
)

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List your tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: paramStatus, Usage: "Pending, In-progress, Completed or all"},
			&cli.StringFlag{Name: paramSortBy, Usage: "createdAt, updatedAt, dueDate, title or status"},
			&cli.StringFlag{Name: paramOrder, Usage: "asc or desc"},
			&cli.StringFlag{Name: paramSearch, Aliases: []string{"q"}, Usage: "only show titles containing this text"},
		},
		Action: func(ctx *cli.Context) error {
			c, err := signedInClient(ctx)
			if err != nil {
				return err
			}
			tasks, _, err := c.ListTasks(ctx.Context, client.ListParams{
				Status: ctx.String(paramStatus),
				SortBy: ctx.String(paramSortBy),
				Order:  ctx.String(paramOrder),
			})
			if err != nil {
				return err
			}
			tasks = searchTasks(tasks, ctx.String(paramSearch))
			return renderTasks(ctx.App.Writer, tasks)
		},
	}
}

func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one task",
		ArgsUsage: "<id>",
		Action: func(ctx *cli.Context) error {
			id, err := taskIDArg(ctx)
			if err != nil {
				return err
			}
			c, err := signedInClient(ctx)
			if err != nil {
				return err
			}
			task, err := c.GetTask(ctx.Context, id)
			if err != nil {
				return err
			}
			renderTask(ctx.App.Writer, task)
			return nil
		},
	}
}

func CreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a task",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: paramTitle, Aliases: []string{"t"}, Required: true},
			&cli.StringFlag{Name: paramDescription, Aliases: []string{"d"}},
			&cli.StringFlag{Name: paramStatus, Usage: "defaults to Pending"},
			&cli.StringFlag{Name: paramDue, Required: true, Usage: "due date, YYYY-MM-DD or RFC3339"},
		},
		Action: func(ctx *cli.Context) error {
			c, err := signedInClient(ctx)
			if err != nil {
				return err
			}
			task, err := c.CreateTask(ctx.Context, taskInput(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Created task %s.\n", task.ID)
			return nil
		},
	}
}

func UpdateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Change the fields given as flags",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: paramTitle, Aliases: []string{"t"}},
			&cli.StringFlag{Name: paramDescription, Aliases: []string{"d"}},
			&cli.StringFlag{Name: paramStatus},
			&cli.StringFlag{Name: paramDue},
		},
		Action: func(ctx *cli.Context) error {
			id, err := taskIDArg(ctx)
			if err != nil {
				return err
			}
			input := taskInput(ctx)
			if input == (client.TaskInput{}) {
				return errors.New("nothing to update, pass at least one field flag")
			}
			c, err := signedInClient(ctx)
			if err != nil {
				return err
			}
			task, err := c.UpdateTask(ctx.Context, id, input)
			if err != nil {
				return err
			}
			renderTask(ctx.App.Writer, task)
			return nil
		},
	}
}

func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a task",
		ArgsUsage: "<id>",
		Action: func(ctx *cli.Context) error {
			id, err := taskIDArg(ctx)
			if err != nil {
				return err
			}
			c, err := signedInClient(ctx)
			if err != nil {
				return err
			}
			if err := c.DeleteTask(ctx.Context, id); err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Deleted task %s.\n", id)
			return nil
		},
	}
}

func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Count your tasks per status",
		Action: func(ctx *cli.Context) error {
			c, err := signedInClient(ctx)
			if err != nil {
				return err
			}
			stats, err := c.Stats(ctx.Context)
			if err != nil {
				return err
			}
			renderStats(ctx.App.Writer, stats)
			return nil
		},
	}
}

func signedInClient(ctx *cli.Context) (*client.Client, error) {
	c, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireSignedIn(c); err != nil {
		return nil, err
	}
	return c, nil
}

func taskIDArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one task id, got %d arguments", ctx.NArg())
	}
	return ctx.Args().First(), nil
}

// taskInput collects only the flags the user actually passed.
func taskInput(ctx *cli.Context) client.TaskInput {
	var input client.TaskInput
	set := func(name string) *string {
		if !ctx.IsSet(name) {
			return nil
		}
		v := ctx.String(name)
		return &v
	}
	input.Title = set(paramTitle)
	input.Description = set(paramDescription)
	input.Status = set(paramStatus)
	input.DueDate = set(paramDue)
	return input
}

func searchTasks(tasks []client.Task, term string) []client.Task {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tasks
	}
	out := make([]client.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), term) {
			out = append(out, t)
		}
	}
	return out
}
