package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskFilter scopes a listing to one owner.
type TaskFilter struct {
	UserID string
	Query  domain.TaskQuery
}

// TaskRepository persists tasks. Lookups by a malformed identifier return
// domain.ErrMalformedTaskID, missing rows domain.ErrTaskNotFound.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	CountByStatus(ctx context.Context, userID string) (map[domain.TaskStatus]int, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
