package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.NewError(domain.ErrCodeForbidden, "not authorized to access this task"), http.StatusForbidden, "FORBIDDEN"},
		{domain.NewValidationError([]domain.Violation{{Field: "title", Message: "title is required"}}), http.StatusBadRequest, "VALIDATION_FAILED"},
		{domain.ErrMalformedTaskID, http.StatusBadRequest, "MALFORMED_IDENTIFIER"},
		{domain.ErrInvalidPayload, http.StatusBadRequest, "INVALID"},
		{domain.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrEmailTaken, http.StatusConflict, "CONFLICT"},
		{domain.WrapError(domain.ErrCodeInternal, "failed to list tasks", errors.New("boom")), http.StatusInternalServerError, "INTERNAL"},
		{errors.New("plain"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

type errorBody struct {
	Status  string             `json:"status"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Errors  []domain.Violation `json:"errors"`
	Meta    map[string]string  `json:"meta"`
}

func respond(t *testing.T, h baseHandler, err error) (int, errorBody) {
	t.Helper()
	rc := &fasthttp.RequestCtx{}
	h.respondError(context.Background(), rc, err)
	var body errorBody
	require.NoError(t, json.Unmarshal(rc.Response.Body(), &body))
	return rc.Response.StatusCode(), body
}

func TestRespondErrorCarriesViolations(t *testing.T) {
	h := newBaseHandler(Options{})
	err := domain.NewValidationError([]domain.Violation{
		{Field: "title", Message: "title is required"},
		{Field: "dueDate", Message: "due date is required"},
	})

	status, body := respond(t, h, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "validation failed", body.Message)
	assert.Len(t, body.Errors, 2)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	cause := domain.WrapError(domain.ErrCodeInternal, "failed to list tasks", errors.New("dial tcp: refused"))

	status, body := respond(t, newBaseHandler(Options{}), cause)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Message)
	assert.Empty(t, body.Meta)

	_, body = respond(t, newBaseHandler(Options{ExposeErrors: true}), cause)
	assert.Contains(t, body.Meta["detail"], "dial tcp: refused")
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	h := newBaseHandler(Options{})
	rc := &fasthttp.RequestCtx{}
	rc.Request.SetBodyString("{not json")

	var dst map[string]interface{}
	assert.False(t, h.decode(rc, &dst))
	assert.Equal(t, http.StatusBadRequest, rc.Response.StatusCode())
}

func TestDecodeReportsWrongTypedField(t *testing.T) {
	h := newBaseHandler(Options{})

	tests := []struct {
		body  string
		field string
	}{
		{`{"title":"x","dueDate":"2030-01-01","status":5}`, "status"},
		{`{"title":"x","dueDate":12345}`, "dueDate"},
		{`{"title":["x"]}`, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			rc := &fasthttp.RequestCtx{}
			rc.Request.SetBodyString(tt.body)

			var req transport.TaskRequest
			assert.False(t, h.decode(rc, &req))
			assert.Equal(t, http.StatusBadRequest, rc.Response.StatusCode())

			var body errorBody
			require.NoError(t, json.Unmarshal(rc.Response.Body(), &body))
			assert.Equal(t, "VALIDATION_FAILED", body.Code)
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tt.field, body.Errors[0].Field)
		})
	}
}
