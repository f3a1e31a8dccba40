package bolt

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

func newTask(owner, title string, status domain.TaskStatus, due time.Time) *domain.Task {
	return &domain.Task{UserID: owner, Title: title, Status: status, DueDate: due}
}

func titles(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func day(d int) time.Time {
	return time.Date(2025, 2, d, 0, 0, 0, 0, time.UTC)
}

func TestTaskRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock(time.Second)
	repo := NewTaskRepository(openTestDB(t), WithClock(clock.Now))

	created, err := repo.Create(ctx, newTask("user-1", "Write report", domain.StatusPending, day(3)))
	require.NoError(t, err)
	require.NoError(t, domain.CheckTaskID(created.ID))
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.DueDate.Equal(day(3)))
}

func TestTaskRepositoryMalformedVersusMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))

	_, err := repo.GetByID(ctx, "not-a-uuid")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformedID))

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	assert.True(t, domain.IsDomainError(repo.Delete(ctx, "nope"), domain.ErrCodeMalformedID))
	assert.True(t, domain.IsDomainError(repo.Delete(ctx, uuid.NewString()), domain.ErrCodeNotFound))
}

func TestTaskRepositoryListScopesFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t), WithClock(newStepClock(time.Minute).Now))

	for _, task := range []*domain.Task{
		newTask("user-1", "bravo", domain.StatusPending, day(3)),
		newTask("user-1", "alpha", domain.StatusCompleted, day(1)),
		newTask("user-2", "foreign", domain.StatusPending, day(1)),
		newTask("user-1", "charlie", domain.StatusPending, day(2)),
	} {
		_, err := repo.Create(ctx, task)
		require.NoError(t, err)
	}

	list := func(q domain.TaskQuery) []string {
		tasks, err := repo.List(ctx, repository.TaskFilter{UserID: "user-1", Query: q})
		require.NoError(t, err)
		return titles(tasks)
	}

	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, list(domain.DefaultTaskQuery()))
	assert.Equal(t, []string{"alpha", "charlie", "bravo"}, list(domain.TaskQuery{SortBy: domain.SortByDueDate}))
	assert.Equal(t, []string{"charlie", "bravo", "alpha"}, list(domain.TaskQuery{SortBy: domain.SortByTitle, Descending: true}))
	assert.Equal(t, []string{"bravo", "charlie"}, list(domain.TaskQuery{Status: domain.StatusPending, SortBy: domain.SortByCreatedAt}))

	empty, err := repo.List(ctx, repository.TaskFilter{UserID: "user-3", Query: domain.DefaultTaskQuery()})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTaskRepositoryTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t), WithClock(newStepClock(0).Now))

	for _, title := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, newTask("user-1", title, domain.StatusPending, day(1)))
		require.NoError(t, err)
	}

	for _, q := range []domain.TaskQuery{
		{SortBy: domain.SortByCreatedAt, Descending: true},
		{SortBy: domain.SortByCreatedAt},
		{SortBy: domain.SortByDueDate, Descending: true},
	} {
		tasks, err := repo.List(ctx, repository.TaskFilter{UserID: "user-1", Query: q})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, titles(tasks))
	}
}

func TestTaskRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock(time.Second)
	repo := NewTaskRepository(openTestDB(t), WithClock(clock.Now))

	created, err := repo.Create(ctx, newTask("user-1", "draft", domain.StatusPending, day(1)))
	require.NoError(t, err)
	createdAt := created.CreatedAt

	changed := *created
	changed.Title = "final"
	changed.Status = domain.StatusCompleted
	changed.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, &changed))
	assert.True(t, changed.UpdatedAt.After(createdAt))
	assert.True(t, changed.CreatedAt.Equal(createdAt))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	// A clock running backwards never moves updatedAt back.
	clock.Set(createdAt.Add(-time.Hour))
	again := *got
	again.Description = "notes"
	require.NoError(t, repo.Update(ctx, &again))
	assert.True(t, again.UpdatedAt.Equal(got.UpdatedAt))
}

func TestTaskRepositoryUpdateRequiresOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))

	created, err := repo.Create(ctx, newTask("user-1", "mine", domain.StatusPending, day(1)))
	require.NoError(t, err)

	hijack := *created
	hijack.UserID = "user-2"
	hijack.Title = "theirs"
	err = repo.Update(ctx, &hijack)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestTaskRepositoryDeleteAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))

	var ids []string
	for _, status := range []domain.TaskStatus{domain.StatusPending, domain.StatusPending, domain.StatusInProgress} {
		created, err := repo.Create(ctx, newTask("user-1", "t", status, day(1)))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := repo.Create(ctx, newTask("user-2", "t", domain.StatusCompleted, day(1)))
	require.NoError(t, err)

	counts, err := repo.CountByStatus(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[domain.TaskStatus]int{domain.StatusPending: 2, domain.StatusInProgress: 1}, counts)

	require.NoError(t, repo.Delete(ctx, ids[0]))
	_, err = repo.GetByID(ctx, ids[0])
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	counts, err = repo.CountByStatus(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StatusPending])
}
