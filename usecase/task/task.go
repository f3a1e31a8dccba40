package task

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// UseCase exposes task operations scoped to the requesting user. Every
// method takes the identity resolved by the auth middleware.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// ListTasks returns every task owned by userID matching q. No pagination.
func (uc *UseCase) ListTasks(ctx context.Context, userID string, q domain.TaskQuery) ([]domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{UserID: userID, Query: q})
	if err != nil {
		return nil, unexpected("list tasks", err)
	}
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	return uc.owned(ctx, userID, id, "access")
}

// CreateTask validates fields and stores a new task owned by userID.
func (uc *UseCase) CreateTask(ctx context.Context, userID string, fields domain.TaskFields) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	task, err := domain.NewTask(userID, fields)
	if err != nil {
		return nil, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, unexpected("create task", err)
	}
	logger.FromContext(ctx, uc.logger).Debug("task created", zap.String("task_id", created.ID))
	return created, nil
}

// UpdateTask applies only the supplied fields. Nothing is written unless
// every supplied field is valid.
func (uc *UseCase) UpdateTask(ctx context.Context, userID, id string, fields domain.TaskFields) (*domain.Task, error) {
	current, err := uc.owned(ctx, userID, id, "update")
	if err != nil {
		return nil, err
	}
	updated, err := current.Apply(fields)
	if err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, updated); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		return nil, unexpected("update task", err)
	}
	return updated, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	if _, err := uc.owned(ctx, userID, id, "delete"); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return err
		}
		return unexpected("delete task", err)
	}
	logger.FromContext(ctx, uc.logger).Debug("task deleted", zap.String("task_id", id))
	return nil
}

// Stats counts the requester's tasks per status.
func (uc *UseCase) Stats(ctx context.Context, userID string) (domain.TaskStats, error) {
	if userID == "" {
		return domain.TaskStats{}, domain.ErrUnauthorized
	}
	counts, err := uc.tasks.CountByStatus(ctx, userID)
	if err != nil {
		return domain.TaskStats{}, unexpected("count tasks", err)
	}
	return domain.TallyTaskStats(counts), nil
}

// owned resolves id and enforces ownership: a malformed id, a missing task
// and someone else's task are three distinct failures.
func (uc *UseCase) owned(ctx context.Context, userID, id, action string) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		var dErr *domain.Error
		if errors.As(err, &dErr) {
			return nil, err
		}
		return nil, unexpected("load task", err)
	}
	if !task.IsOwnedBy(userID) {
		return nil, domain.NewError(domain.ErrCodeForbidden, "not authorized to "+action+" this task")
	}
	return task, nil
}

// unexpected hides store failures behind INTERNAL. The handler boundary logs them.
func unexpected(op string, err error) error {
	return domain.WrapError(domain.ErrCodeInternal, "failed to "+op, err)
}
