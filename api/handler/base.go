package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
)

// Options carries what every handler shares.
type Options struct {
	Adapter *httpcontext.Adapter
	Logger  *zap.Logger
	// ExposeErrors adds the wrapped cause of internal errors to responses.
	// Never enabled in production.
	ExposeErrors bool
	// Now is the clock used to derive isOverdue.
	Now func() time.Time
}

type baseHandler struct {
	adapter      *httpcontext.Adapter
	logger       *zap.Logger
	exposeErrors bool
	now          func() time.Time
}

func newBaseHandler(opts Options) baseHandler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return baseHandler{
		adapter:      opts.Adapter,
		logger:       opts.Logger,
		exposeErrors: opts.ExposeErrors,
		now:          opts.Now,
	}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	transport.WriteJSON(ctx, status, payload)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, message string, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(message, data))
}

// respondError is the boundary where domain errors become HTTP responses.
// Unexpected errors are logged here and reported without internal detail.
func (h baseHandler) respondError(ctx context.Context, rc *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status != http.StatusInternalServerError {
		payload := transport.NewError(code, publicMessage(err), nil)
		payload.Errors = domain.ViolationsOf(err)
		h.respondJSON(rc, status, payload)
		return
	}

	logger.FromContext(ctx, h.logger).Error("request failed",
		zap.String("method", string(rc.Method())),
		zap.String("path", string(rc.Path())),
		zap.Error(err))

	var meta interface{}
	if h.exposeErrors {
		meta = map[string]string{"detail": err.Error()}
	}
	h.respondJSON(rc, status, transport.NewError(code, "internal server error", meta))
}

// decode reads the JSON body into dst, answering 400 itself on failure. A
// well-formed body with a wrongly typed field is a validation failure on
// that field; anything else is an undecodable payload.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	err := json.Unmarshal(ctx.PostBody(), dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		payload := transport.NewError(string(domain.ErrCodeValidation), "validation failed", nil)
		payload.Errors = []domain.Violation{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s must be a %s, got %s", typeErr.Field, typeErr.Type.Kind(), typeErr.Value),
		}}
		h.respondJSON(ctx, http.StatusBadRequest, payload)
		return false
	}

	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid JSON payload", nil))
	return false
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeValidation):
		return http.StatusBadRequest, string(domain.ErrCodeValidation)
	case domain.IsDomainError(err, domain.ErrCodeMalformedID):
		return http.StatusBadRequest, string(domain.ErrCodeMalformedID)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// publicMessage is the domain message without the violation summary, which
// travels separately in the errors field.
func publicMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}
