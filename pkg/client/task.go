package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

// Task is a task as returned by the API.
type Task = transport.TaskView

// TaskInput is a create or update body. Nil fields are not sent.
type TaskInput = transport.TaskRequest

// ListParams are the optional list filters. Zero values use server defaults.
type ListParams struct {
	Status string
	SortBy string
	Order  string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	return q
}

// ListTasks returns the caller's tasks and the server-side count.
func (c *Client) ListTasks(ctx context.Context, params ListParams) ([]Task, int, error) {
	var tasks []Task
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/tasks", query: params.values(), result: &tasks})
	if err != nil {
		return nil, 0, err
	}
	return tasks, env.Count, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if _, err := c.do(ctx, call{method: http.MethodGet, path: taskPath(id), result: &task}); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	var task Task
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/tasks", body: input, result: &task}); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, input TaskInput) (*Task, error) {
	var task Task
	if _, err := c.do(ctx, call{method: http.MethodPut, path: taskPath(id), body: input, result: &task}); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: taskPath(id)})
	return err
}

func (c *Client) Stats(ctx context.Context) (*domain.TaskStats, error) {
	var stats domain.TaskStats
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/tasks/stats", result: &stats}); err != nil {
		return nil, err
	}
	return &stats, nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}
