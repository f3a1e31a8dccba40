package client

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fastygo/taskboard/domain"
)

// APIError is a non-success response carrying the server's message.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Violations []domain.Violation
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "an error occurred"
	}
	if len(e.Violations) > 0 {
		parts := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			parts = append(parts, v.Field+": "+v.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("%s [%d]", msg, e.StatusCode)
}

// Is lets callers match on the status code with errors.Is(err, &APIError{StatusCode: 404}).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// Sentinels for errors.Is. A rejected credential matches ErrUnauthorized
// while still carrying the server's message.
var (
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized, Message: "not authorized, please sign in"}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden}
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound}
)
