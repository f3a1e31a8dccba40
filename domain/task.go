package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In-progress"
	StatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists every valid status in display order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a user-owned unit of work.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     time.Time  `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue is derived on read and never stored.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.IsCompleted() {
		return false
	}
	return now.After(t.DueDate)
}

func (t *Task) IsOwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}

// taskRules mirrors the validated fields of a Task under their wire names.
type taskRules struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=500"`
	Status      TaskStatus `json:"status" validate:"oneof=Pending In-progress Completed"`
	DueDate     time.Time  `json:"dueDate" validate:"required"`
}

// Validate checks every field constraint and reports all violations together.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	return t.validate()
}

func (t *Task) validate(overrides ...Violation) error {
	return check(taskRules{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
	}, overrides...)
}

// TaskFields carries client-supplied values. A nil field was not supplied.
type TaskFields struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *string
}

// NewTask builds a validated task owned by userID. Identifier and timestamps
// are left for the store to assign.
func NewTask(userID string, f TaskFields) (*Task, error) {
	task := &Task{
		UserID: userID,
		Status: StatusPending,
	}
	if f.Status != nil && *f.Status == "" {
		f.Status = nil
	}
	if err := task.validate(task.assign(f)...); err != nil {
		return nil, err
	}
	return task, nil
}

// Apply returns a copy of t with the supplied fields replaced. Owner,
// identifier and timestamps are never touched. The receiver is left intact
// when validation fails.
func (t Task) Apply(f TaskFields) (*Task, error) {
	updated := t
	if err := updated.validate(updated.assign(f)...); err != nil {
		return nil, err
	}
	return &updated, nil
}

// assign copies the supplied fields into t and returns the fields that could
// not be parsed at all.
func (t *Task) assign(f TaskFields) []Violation {
	if f.Title != nil {
		t.Title = strings.TrimSpace(*f.Title)
	}
	if f.Description != nil {
		t.Description = strings.TrimSpace(*f.Description)
	}
	if f.Status != nil {
		t.Status = TaskStatus(*f.Status)
	}
	if f.DueDate != nil {
		raw := strings.TrimSpace(*f.DueDate)
		if raw == "" {
			t.DueDate = time.Time{}
			return nil
		}
		due, err := ParseDueDate(raw)
		if err != nil {
			return []Violation{{Field: "dueDate", Message: "due date must be an RFC 3339 timestamp or a YYYY-MM-DD date"}}
		}
		t.DueDate = due
	}
	return nil
}

// ParseDueDate accepts RFC 3339 timestamps and plain calendar dates.
func ParseDueDate(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return day.UTC(), nil
}

// CheckTaskID rejects identifiers that can never resolve to a task.
func CheckTaskID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrMalformedTaskID
	}
	return nil
}
