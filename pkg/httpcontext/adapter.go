package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"

	// UserValueUserID is the fasthttp user value set by the auth middleware.
	UserValueUserID = "auth.user_id"
	// UserValueSessionID is the fasthttp user value holding the session behind the token.
	UserValueSessionID = "auth.session_id"
	// UserValueRequestID lets the access log and handlers share one request ID.
	UserValueRequestID = "request_id"

	HeaderRequestID = "X-Request-ID"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach derives a context bounded by the adapter timeout and carrying the
// request ID, the authenticated user and client metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	stdCtx = appLogger.ContextWithRequestID(stdCtx, RequestID(ctx))
	if userID := UserID(ctx); userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}
	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// RequestID returns the request ID for ctx, assigning one on first use and
// echoing it in the response headers.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(UserValueRequestID).(string); ok && id != "" {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(UserValueRequestID, id)
	ctx.Response.Header.Set(HeaderRequestID, id)
	return id
}

// UserID returns the authenticated user, or "" on public routes.
func UserID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(UserValueUserID).(string)
	return id
}

// SessionID returns the session behind the bearer token, or "".
func SessionID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(UserValueSessionID).(string)
	return id
}

// Metadata extracts client details from a context produced by Attach.
func Metadata(ctx context.Context) map[string]string {
	meta := make(map[string]string, 2)
	if v, ok := ctx.Value(KeyRemoteAddr).(string); ok && v != "" {
		meta[string(KeyRemoteAddr)] = v
	}
	if v, ok := ctx.Value(KeyUserAgent).(string); ok && v != "" {
		meta[string(KeyUserAgent)] = v
	}
	return meta
}
