package domain

// TaskStats is the per-owner status breakdown. Every status is always present.
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// TallyTaskStats turns a group-by-status count into stats, reporting zero for
// statuses absent from counts.
func TallyTaskStats(counts map[TaskStatus]int) TaskStats {
	tally := make(map[TaskStatus]int, len(TaskStatuses))
	for _, status := range TaskStatuses {
		tally[status] = 0
	}

	var total int
	for status, n := range counts {
		total += n
		if _, known := tally[status]; known {
			tally[status] = n
		}
	}

	return TaskStats{
		Total:      total,
		Pending:    tally[StatusPending],
		InProgress: tally[StatusInProgress],
		Completed:  tally[StatusCompleted],
	}
}
