package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

// taskRecord is the stored form. Seq preserves insertion order for ties.
type taskRecord struct {
	domain.Task
	Seq uint64 `json:"seq"`
}

type taskRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// Option customises an embedded repository.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for timestamp assignment.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// NewTaskRepository returns a BoltDB-backed implementation of TaskRepository.
func NewTaskRepository(db *bbolt.DB, opts ...Option) repository.TaskRepository {
	o := buildOptions(opts)
	return &taskRepository{db: db, now: o.now}
}

func (r *taskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	if err := domain.CheckTaskID(id); err != nil {
		return nil, err
	}
	var rec taskRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		return getTask(tx, id, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec.Task, nil
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var records []taskRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltInfra.BucketTasks).ForEach(func(_, v []byte) error {
			var rec taskRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.UserID != filter.UserID {
				return nil
			}
			if filter.Query.Status != "" && rec.Status != filter.Query.Status {
				return nil
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })
	less := taskLess(filter.Query.SortBy)
	sort.SliceStable(records, func(i, j int) bool {
		if filter.Query.Descending {
			return less(&records[j].Task, &records[i].Task)
		}
		return less(&records[i].Task, &records[j].Task)
	})

	tasks := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.Task)
	}
	return tasks, nil
}

func (r *taskRepository) CountByStatus(_ context.Context, userID string) (map[domain.TaskStatus]int, error) {
	counts := make(map[domain.TaskStatus]int)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltInfra.BucketTasks).ForEach(func(_, v []byte) error {
			var rec taskRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.UserID == userID {
				counts[rec.Status]++
			}
			return nil
		})
	})
	return counts, err
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltInfra.BucketTasks)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		now := r.now().UTC()
		task.CreatedAt = now
		task.UpdatedAt = now
		return putTask(bucket, taskRecord{Task: *task, Seq: seq})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if err := domain.CheckTaskID(task.ID); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		var current taskRecord
		if err := getTask(tx, task.ID, &current); err != nil {
			return err
		}
		if current.UserID != task.UserID {
			return domain.ErrTaskNotFound
		}

		updatedAt := r.now().UTC()
		if updatedAt.Before(current.UpdatedAt) {
			updatedAt = current.UpdatedAt
		}

		current.Title = task.Title
		current.Description = task.Description
		current.Status = task.Status
		current.DueDate = task.DueDate
		current.UpdatedAt = updatedAt
		if err := putTask(tx.Bucket(boltInfra.BucketTasks), current); err != nil {
			return err
		}

		task.CreatedAt = current.CreatedAt
		task.UpdatedAt = updatedAt
		return nil
	})
}

func (r *taskRepository) Delete(_ context.Context, id string) error {
	if err := domain.CheckTaskID(id); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltInfra.BucketTasks)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func getTask(tx *bbolt.Tx, id string, rec *taskRecord) error {
	raw := tx.Bucket(boltInfra.BucketTasks).Get([]byte(id))
	if raw == nil {
		return domain.ErrTaskNotFound
	}
	return json.Unmarshal(raw, rec)
}

func putTask(bucket *bbolt.Bucket, rec taskRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(rec.ID), payload)
}

func taskLess(field domain.TaskSortField) func(a, b *domain.Task) bool {
	switch field {
	case domain.SortByUpdatedAt:
		return func(a, b *domain.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case domain.SortByDueDate:
		return func(a, b *domain.Task) bool { return a.DueDate.Before(b.DueDate) }
	case domain.SortByTitle:
		return func(a, b *domain.Task) bool { return strings.Compare(a.Title, b.Title) < 0 }
	case domain.SortByStatus:
		return func(a, b *domain.Task) bool { return a.Status < b.Status }
	default:
		return func(a, b *domain.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
