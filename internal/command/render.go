package command

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/client"
)

func renderTasks(w io.Writer, tasks []client.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tDUE\t")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, humanize.Time(t.DueDate), overdueMarker(t))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n", english.Plural(len(tasks), "task", "tasks"))
	return err
}

func renderTask(w io.Writer, t *client.Task) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Status\t%s\n", t.Status)
	fmt.Fprintf(tw, "Due\t%s (%s) %s\n", t.DueDate.Local().Format("2006-01-02"), humanize.Time(t.DueDate), overdueMarker(*t))
	fmt.Fprintf(tw, "Created\t%s\n", humanize.Time(t.CreatedAt))
	fmt.Fprintf(tw, "Updated\t%s\n", humanize.Time(t.UpdatedAt))
	tw.Flush()
}

func renderStats(w io.Writer, s *domain.TaskStats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", domain.StatusPending, humanize.Comma(int64(s.Pending)))
	fmt.Fprintf(tw, "%s\t%s\n", domain.StatusInProgress, humanize.Comma(int64(s.InProgress)))
	fmt.Fprintf(tw, "%s\t%s\n", domain.StatusCompleted, humanize.Comma(int64(s.Completed)))
	fmt.Fprintf(tw, "Total\t%s\n", humanize.Comma(int64(s.Total)))
	tw.Flush()
}

func overdueMarker(t client.Task) string {
	if t.IsOverdue {
		return "OVERDUE"
	}
	return ""
}
