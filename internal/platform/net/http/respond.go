// Package http provides the status server and helpers for writing JSON responses with a consistent envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "redditimport/internal/platform/errors"
)

// Envelope is the standard response body for all endpoints
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK writes a 200 envelope with data
func RespondOK(w stdhttp.ResponseWriter, r *stdhttp.Request, data any) {
	JSON(w, stdhttp.StatusOK, Envelope{
		StatusCode: stdhttp.StatusOK,
		Status:     stdhttp.StatusText(stdhttp.StatusOK),
		RequestID:  RequestID(r.Context()),
		Data:       data,
	})
}

// RespondError maps a project error into an envelope and writes it
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status := HTTPStatus(err)
	msg := stdhttp.StatusText(status)
	if status < stdhttp.StatusInternalServerError {
		msg = err.Error()
	}
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		Code:       perr.CodeOf(err).String(),
		Error:      msg,
		RequestID:  RequestID(r.Context()),
	})
}

// HTTPStatus maps a project error to an http status
func HTTPStatus(err error) int {
	if err == nil {
		return stdhttp.StatusOK
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeMalformed:
		return stdhttp.StatusBadRequest
	case perr.ErrorCodeNotFound:
		return stdhttp.StatusNotFound
	case perr.ErrorCodeConnectivity, perr.ErrorCodeUnavailable:
		return stdhttp.StatusServiceUnavailable
	default:
		return stdhttp.StatusInternalServerError
	}
}
