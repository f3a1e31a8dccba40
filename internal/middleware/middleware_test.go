package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

type authenticatorFunc func(ctx context.Context, token string) (*domain.Identity, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	return f(ctx, token)
}

func newRequestCtx(method, path string, headers map[string]string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func TestBearerAuth(t *testing.T) {
	auth := authenticatorFunc(func(_ context.Context, token string) (*domain.Identity, error) {
		switch token {
		case "good":
			return &domain.Identity{UserID: "user-1", SessionID: "sess-1"}, nil
		case "broken-store":
			return nil, errors.New("redis down")
		default:
			return nil, domain.ErrUnauthorized
		}
	})

	var reachedUser, reachedSession string
	next := func(ctx *fasthttp.RequestCtx) {
		reachedUser = httpcontext.UserID(ctx)
		reachedSession = httpcontext.SessionID(ctx)
		ctx.SetStatusCode(fasthttp.StatusOK)
	}
	handler := BearerAuth(auth, nil, nil)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
		wantUser   string
	}{
		{"missing header", "", fasthttp.StatusUnauthorized, "not authorized, no token", ""},
		{"wrong scheme", "Basic Zm9vOmJhcg==", fasthttp.StatusUnauthorized, "not authorized, no token", ""},
		{"rejected token", "Bearer forged", fasthttp.StatusUnauthorized, "not authorized, token failed", ""},
		{"store failure", "Bearer broken-store", fasthttp.StatusInternalServerError, "internal server error", ""},
		{"valid token", "Bearer good", fasthttp.StatusOK, "", "user-1"},
		{"lowercase scheme", "bearer good", fasthttp.StatusOK, "", "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reachedUser, reachedSession = "", ""
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			ctx := newRequestCtx("GET", "/api/v1/tasks", headers)

			handler(ctx)

			assert.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			assert.Equal(t, tt.wantUser, reachedUser)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeEnvelope(t, ctx).Message)
			}
			if tt.wantStatus == fasthttp.StatusUnauthorized {
				assert.NotEmpty(t, ctx.Response.Header.Peek("WWW-Authenticate"))
			}
			if tt.wantUser != "" {
				assert.Equal(t, "sess-1", reachedSession)
			}
		})
	}
}

func TestBearerAuthIgnoresSpoofedIdentityHeaders(t *testing.T) {
	handler := BearerAuth(authenticatorFunc(func(context.Context, string) (*domain.Identity, error) {
		return nil, domain.ErrUnauthorized
	}), nil, nil)(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run")
	})

	ctx := newRequestCtx("GET", "/api/v1/tasks", map[string]string{"X-User-ID": "user-1"})
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestCORS(t *testing.T) {
	var called bool
	handler := CORS([]string{"http://localhost:8080/"})(func(ctx *fasthttp.RequestCtx) {
		called = true
	})

	ctx := newRequestCtx("OPTIONS", "/api/v1/tasks", map[string]string{
		"Origin":                        "http://localhost:8080",
		"Access-Control-Request-Method": "POST",
	})
	handler(ctx)
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	assert.Equal(t, "http://localhost:8080", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "true", string(ctx.Response.Header.Peek("Access-Control-Allow-Credentials")))
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")), "Authorization")

	ctx = newRequestCtx("GET", "/api/v1/tasks", map[string]string{"Origin": "http://evil.example"})
	handler(ctx)
	assert.True(t, called)
	assert.Empty(t, ctx.Response.Header.Peek("Access-Control-Allow-Origin"))
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	handler := CORS([]string{"*", "http://localhost:8080"})(func(*fasthttp.RequestCtx) {})

	ctx := newRequestCtx("GET", "/api/v1/tasks", map[string]string{"Origin": "http://evil.example"})
	handler(ctx)
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Empty(t, ctx.Response.Header.Peek("Access-Control-Allow-Credentials"))

	ctx = newRequestCtx("GET", "/api/v1/tasks", map[string]string{"Origin": "http://localhost:8080"})
	handler(ctx)
	assert.Equal(t, "http://localhost:8080", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "true", string(ctx.Response.Header.Peek("Access-Control-Allow-Credentials")))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	h := Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mw("outer"), mw("inner"), AccessLog(nil))
	h(newRequestCtx("GET", "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
