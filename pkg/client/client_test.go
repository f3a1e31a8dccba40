package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/app"
	"github.com/fastygo/taskboard/internal/config"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/pkg/client"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
)

type testServer struct {
	ln *fasthttputil.InmemoryListener
}

// startServer serves the full API over an in-memory listener.
func startServer(t *testing.T) *testServer {
	t.Helper()

	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Environment: config.EnvDevelopment,
		JWT:         config.JWTConfig{Secret: "client-test-secret", Issuer: "taskboard", TTL: time.Hour},
		Auth:        config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Context:     config.ContextConfig{RequestTimeout: 5 * time.Second},
	}
	stores := app.Stores{
		Tasks:    boltRepo.NewTaskRepository(db),
		Users:    boltRepo.NewUserRepository(db),
		Sessions: boltRepo.NewSessionRepository(db, time.Hour),
	}
	handler := app.NewHandler(cfg, stores, monitor.New(0, nil), nil)

	ln := fasthttputil.NewInmemoryListener()
	go fasthttp.Serve(ln, handler) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	return &testServer{ln: ln}
}

func (s *testServer) httpClient() *fasthttp.Client {
	return &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return s.ln.Dial() },
	}
}

func (s *testServer) client(opts ...client.OptionFunc) *client.Client {
	return client.New(append([]client.OptionFunc{
		client.WithBaseURL(baseURL),
		client.WithHTTPClient(s.httpClient()),
	}, opts...)...)
}

// raw sends body verbatim, bypassing the typed client.
func (s *testServer) raw(t *testing.T, method, path, token, body string) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.SetBodyString(body)
	require.NoError(t, s.httpClient().DoTimeout(req, resp, 5*time.Second))
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

const baseURL = "http://taskboard.test/api/v1"

func str(s string) *string { return &s }

func TestTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := startServer(t).client()

	auth, err := c.Register(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, c.Session().Authenticated())
	assert.Equal(t, "Ada", auth.User.Name)

	created, err := c.CreateTask(ctx, client.TaskInput{
		Title:   str("Write report"),
		DueDate: str("2000-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, created.Owner)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.True(t, created.IsOverdue)

	_, err = c.CreateTask(ctx, client.TaskInput{Title: str("Later"), DueDate: str("2999-01-01"), Status: str("In-progress")})
	require.NoError(t, err)

	tasks, count, err := c.ListTasks(ctx, client.ListParams{SortBy: "title", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Later", tasks[0].Title)
	assert.False(t, tasks[0].IsOverdue)

	updated, err := c.UpdateTask(ctx, created.ID, client.TaskInput{Status: str("Completed")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	assert.False(t, updated.IsOverdue)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStats{Total: 2, Pending: 0, InProgress: 1, Completed: 1}, *stats)

	require.NoError(t, c.DeleteTask(ctx, created.ID))
	_, err = c.GetTask(ctx, created.ID)
	assert.True(t, errors.Is(err, client.ErrNotFound))
}

func TestServerErrorsSurfaceAsAPIError(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)

	alice := srv.client()
	_, err := alice.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = alice.CreateTask(ctx, client.TaskInput{Title: str(""), Status: str("Done")})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)
	assert.Len(t, apiErr.Violations, 3)

	_, err = alice.GetTask(ctx, "123")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "MALFORMED_IDENTIFIER", apiErr.Code)

	_, _, err = alice.ListTasks(ctx, client.ListParams{SortBy: "priority"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)

	task, err := alice.CreateTask(ctx, client.TaskInput{Title: str("secret"), DueDate: str("2030-01-01")})
	require.NoError(t, err)

	bob := srv.client()
	_, err = bob.Register(ctx, "Bob", "bob@example.com", "secret1")
	require.NoError(t, err)

	_, err = bob.GetTask(ctx, task.ID)
	assert.True(t, errors.Is(err, client.ErrForbidden))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not authorized to access this task", apiErr.Message)

	_, err = bob.Register(ctx, "Alice again", "alice@example.com", "secret1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)

	var notified, cleared bool
	session := client.NewSession("not-a-real-token")
	session.OnClear(func() { cleared = true })
	c := srv.client(
		client.WithSession(session),
		client.WithUnauthorizedHandler(func() { notified = true }),
	)

	_, _, err := c.ListTasks(ctx, client.ListParams{})
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.True(t, notified)
	assert.True(t, cleared)
	assert.False(t, session.Authenticated())
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	c := startServer(t).client()

	_, err := c.Register(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	token := c.Session().Token()

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Session().Authenticated())

	c.Session().Set(token)
	_, err = c.Stats(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = c.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", profile.Email)
}

func TestFailedLoginKeepsServerMessage(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)

	_, err := srv.client().Register(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	var redirected, cleared bool
	session := client.NewSession("earlier-token")
	session.OnClear(func() { cleared = true })
	other := srv.client(
		client.WithSession(session),
		client.WithUnauthorizedHandler(func() { redirected = true }),
	)

	_, err = other.Login(ctx, "ada@example.com", "wrongpass")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.False(t, redirected, "a failed sign-in must not redirect to sign-in")
	assert.False(t, cleared)
	assert.Equal(t, "earlier-token", session.Token())
}

func TestRejectedTokenKeepsServerMessage(t *testing.T) {
	c := startServer(t).client(client.WithSession(client.NewSession("forged")))

	_, err := c.Stats(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "not authorized, token failed", apiErr.Message)
	assert.False(t, c.Session().Authenticated())
}

type rawEnvelope struct {
	Status string             `json:"status"`
	Code   string             `json:"code"`
	Data   json.RawMessage    `json:"data"`
	Errors []domain.Violation `json:"errors"`
}

func TestOwnerComesFromIdentity(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)

	alice := srv.client()
	aliceAuth, err := alice.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	bob := srv.client()
	bobAuth, err := bob.Register(ctx, "Bob", "bob@example.com", "secret1")
	require.NoError(t, err)

	body := `{"title":"mine","dueDate":"2030-01-01","owner":"` + bobAuth.User.ID + `","userId":"` + bobAuth.User.ID + `"}`
	status, payload := srv.raw(t, "POST", "/tasks", alice.Session().Token(), body)
	require.Equal(t, 201, status, string(payload))

	var env rawEnvelope
	require.NoError(t, json.Unmarshal(payload, &env))
	var created client.Task
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, aliceAuth.User.ID, created.Owner)

	bobs, _, err := bob.ListTasks(ctx, client.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, bobs)

	// The owner can not be reassigned through an update either.
	status, payload = srv.raw(t, "PUT", "/tasks/"+created.ID, alice.Session().Token(), `{"owner":"`+bobAuth.User.ID+`"}`)
	require.Equal(t, 200, status, string(payload))
	got, err := alice.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, aliceAuth.User.ID, got.Owner)
}

func TestWrongTypedFieldIsAValidationFailure(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)

	c := srv.client()
	_, err := c.Register(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	for body, field := range map[string]string{
		`{"title":"x","dueDate":"2030-01-01","status":5}`: "status",
		`{"title":"x","dueDate":12345}`:                   "dueDate",
	} {
		status, payload := srv.raw(t, "POST", "/tasks", c.Session().Token(), body)
		assert.Equal(t, 400, status)

		var env rawEnvelope
		require.NoError(t, json.Unmarshal(payload, &env))
		assert.Equal(t, "VALIDATION_FAILED", env.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, field, env.Errors[0].Field)
	}

	tasks, _, err := c.ListTasks(ctx, client.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
