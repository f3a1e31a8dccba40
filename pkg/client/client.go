package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
)

// Client translates task actions into calls against the taskboard API.
type Client struct {
	baseURL        string
	httpClient     *fasthttp.Client
	session        *Session
	timeout        time.Duration
	onUnauthorized func()
}

func New(funcs ...OptionFunc) *Client {
	opts := NewOptions(funcs...)
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     opts.HTTPClient,
		session:        opts.Session,
		timeout:        opts.Timeout,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// Session exposes the credential holder used by the client.
func (c *Client) Session() *Session {
	return c.session
}

type envelope struct {
	Status  string             `json:"status"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Count   int                `json:"count"`
	Data    json.RawMessage    `json:"data"`
	Errors  []domain.Violation `json:"errors"`
}

// call describes one API request. result may be nil. Public calls never
// carry the bearer credential, so a 401 on them is a plain failure rather
// than a rejected session.
type call struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	result interface{}
	public bool
}

// do sends one request and decodes the envelope.
func (c *Client) do(ctx context.Context, cl call) (*envelope, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + cl.path
	if len(cl.query) > 0 {
		uri += "?" + cl.query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(cl.method)
	req.Header.Set("Accept", "application/json")
	credentialed := false
	if token := c.session.Token(); token != "" && !cl.public {
		req.Header.Set("Authorization", "Bearer "+token)
		credentialed = true
	}
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if err := c.httpClient.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}

	status := resp.StatusCode()
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if status >= http.StatusBadRequest {
			env = envelope{Status: "error", Message: http.StatusText(status)}
		} else {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices || env.Status == "error" {
		apiErr := &APIError{
			StatusCode: status,
			Code:       env.Code,
			Message:    env.Message,
			Violations: env.Errors,
		}
		if status == http.StatusUnauthorized && credentialed {
			c.session.Clear()
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		return nil, apiErr
	}

	if cl.result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, cl.result); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if ctx != nil {
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
	}
	return deadline
}
