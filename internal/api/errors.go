package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/ganttsync/pkg/errors"
	gsio "github.com/matzehuels/ganttsync/pkg/io"
)

type errorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId,omitempty"`
	Problems  []gsio.Problem `json:"problems,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsInvalid(err), errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusBadRequest
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeErr reports err with the status its code maps to.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	body := errorBody{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: RequestIDFromContext(r.Context()),
	}
	var se *gsio.SchemaError
	if stderrors.As(err, &se) {
		body.Problems = se.Problems
	}
	writeJSON(w, statusFor(err), map[string]errorBody{"error": body})
}

// writeError reports a routing-level failure that has no error value.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {
		Code:      code,
		Message:   message,
		RequestID: RequestIDFromContext(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
