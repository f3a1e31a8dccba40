package domain

// TaskSortField names a sortable task attribute using its wire name.
type TaskSortField string

const (
	SortByCreatedAt TaskSortField = "createdAt"
	SortByUpdatedAt TaskSortField = "updatedAt"
	SortByDueDate   TaskSortField = "dueDate"
	SortByTitle     TaskSortField = "title"
	SortByStatus    TaskSortField = "status"
)

func (f TaskSortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByTitle, SortByStatus:
		return true
	}
	return false
}

// TaskQuery describes how an owner's tasks are filtered and ordered.
// An empty Status means every status.
type TaskQuery struct {
	Status     TaskStatus
	SortBy     TaskSortField
	Descending bool
}

// DefaultTaskQuery lists everything, newest first.
func DefaultTaskQuery() TaskQuery {
	return TaskQuery{SortBy: SortByCreatedAt, Descending: true}
}

type taskQueryRules struct {
	Status string `json:"status" validate:"omitempty,oneof=all Pending In-progress Completed"`
	SortBy string `json:"sortBy" validate:"omitempty,oneof=createdAt updatedAt dueDate title status"`
	Order  string `json:"order" validate:"omitempty,oneof=asc desc"`
}

// ParseTaskQuery reads the raw list parameters. Empty values fall back to
// DefaultTaskQuery and "all" disables the status filter.
func ParseTaskQuery(status, sortBy, order string) (TaskQuery, error) {
	if err := check(taskQueryRules{Status: status, SortBy: sortBy, Order: order}); err != nil {
		return TaskQuery{}, err
	}

	q := DefaultTaskQuery()
	if status != "" && status != "all" {
		q.Status = TaskStatus(status)
	}
	if sortBy != "" {
		q.SortBy = TaskSortField(sortBy)
	}
	if order == "asc" {
		q.Descending = false
	}
	return q, nil
}
