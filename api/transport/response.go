package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status  string             `json:"status"`
	Code    string             `json:"code,omitempty"`
	Message string             `json:"message,omitempty"`
	Count   *int               `json:"count,omitempty"`
	Data    interface{}        `json:"data,omitempty"`
	Errors  []domain.Violation `json:"errors,omitempty"`
	Meta    interface{}        `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(message string, data interface{}) Envelope {
	return Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// NewList returns a success envelope whose count always appears, even when zero.
func NewList(data interface{}, count int) Envelope {
	return Envelope{
		Status: StatusSuccess,
		Count:  &count,
		Data:   data,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code, message string, meta interface{}) Envelope {
	return Envelope{
		Status:  StatusError,
		Code:    code,
		Message: message,
		Meta:    meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// WriteJSON renders payload as the response body with the given status.
func WriteJSON(ctx *fasthttp.RequestCtx, status int, payload Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.SetStatusCode(http.StatusInternalServerError)
		body = []byte(`{"status":"error","message":"internal server error"}`)
	}
	ctx.SetBody(body)
}

// TaskView is the wire shape of a task. IsOverdue is computed at render time.
type TaskView struct {
	ID          string            `json:"id"`
	Owner       string            `json:"owner"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     time.Time         `json:"dueDate"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	IsOverdue   bool              `json:"isOverdue"`
}

func NewTaskView(task *domain.Task, now time.Time) TaskView {
	return TaskView{
		ID:          task.ID,
		Owner:       task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		IsOverdue:   task.IsOverdue(now),
	}
}

func NewTaskViews(tasks []domain.Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, NewTaskView(&tasks[i], now))
	}
	return views
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// HealthView reports dependency probes.
type HealthView struct {
	Timestamp time.Time       `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}
