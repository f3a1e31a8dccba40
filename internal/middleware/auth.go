package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
)

// Middleware wraps a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Authenticator resolves a bearer credential to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// BearerAuth rejects requests without a valid bearer token before any
// handler runs and stores the resolved identity as request user values.
func BearerAuth(auth Authenticator, adapter *httpcontext.Adapter, log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := extractToken(ctx)
			if token == "" {
				unauthorized(ctx, "not authorized, no token")
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			identity, err := auth.Authenticate(stdCtx, token)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					unauthorized(ctx, "not authorized, token failed")
					return
				}
				logger.FromContext(stdCtx, log).Error("bearer authentication failed", zap.Error(err))
				transport.WriteJSON(ctx, http.StatusInternalServerError,
					transport.NewError(string(domain.ErrCodeInternal), "internal server error", nil))
				return
			}

			ctx.SetUserValue(httpcontext.UserValueUserID, identity.UserID)
			ctx.SetUserValue(httpcontext.UserValueSessionID, identity.SessionID)
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="taskboard"`)
	transport.WriteJSON(ctx, http.StatusUnauthorized,
		transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
