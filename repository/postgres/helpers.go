package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/taskboard/domain"
)

const uniqueViolation = "23505"

var sortColumns = map[domain.TaskSortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByDueDate:   "due_date",
	domain.SortByTitle:     `title COLLATE "C"`,
	domain.SortByStatus:    `status COLLATE "C"`,
}

// orderClause only ever emits whitelisted column names. Text columns sort
// by byte order, matching the bolt driver. Ties fall back to insertion order.
func orderClause(q domain.TaskQuery) string {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreatedAt]
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, seq ASC", column, direction)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
