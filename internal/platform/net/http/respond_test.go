package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "redditimport/internal/platform/errors"
	phttp "redditimport/internal/platform/net/http"
)

func reqWithReqID(method, path, rid string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(phttp.WithRequestID(req.Context(), rid))
}

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	phttp.JSON(rec, http.StatusTeapot, map[string]any{"k": "v"})
	if rec.Code != http.StatusTeapot {
		t.Fatalf("JSON status: expected 418, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content-type = %q", ct)
	}
}

func TestRespondOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	phttp.RespondOK(rec, reqWithReqID("GET", "/x", "rid-1"), map[string]string{"a": "b"})
	if rec.Code != http.StatusOK {
		t.Fatalf("RespondOK code: %d", rec.Code)
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.StatusCode != 200 || env.RequestID != "rid-1" || env.Data == nil || env.Error != "" {
		t.Fatalf("bad envelope: %+v", env)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{perr.InvalidArgf("limit must be positive"), 400, "invalid_argument", "limit must be positive"},
		{perr.NotFoundf("no such file"), 404, "not_found", "no such file"},
		{perr.Connectivityf("pg down"), 503, "connectivity", "Service Unavailable"},
		{perr.New(perr.ErrorCodeUnavailable, "busy"), 503, "unavailable", "Service Unavailable"},
		{errors.New("secret detail"), 500, "unknown", "Internal Server Error"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		phttp.RespondError(rec, reqWithReqID("GET", "/x", "rid-2"), c.err)
		if rec.Code != c.status {
			t.Fatalf("%v: status %d, want %d", c.err, rec.Code, c.status)
		}
		var env phttp.Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Code != c.code || env.Error != c.msg || env.RequestID != "rid-2" {
			t.Fatalf("%v: envelope %+v", c.err, env)
		}
	}
	if phttp.HTTPStatus(nil) != http.StatusOK {
		t.Fatalf("nil error should map to 200")
	}
}

func TestRequestIDMissing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	if phttp.RequestID(req.Context()) != "" {
		t.Fatalf("expected empty request id")
	}
	if ctx := phttp.WithRequestID(req.Context(), ""); phttp.RequestID(ctx) != "" {
		t.Fatalf("empty id should not be stored")
	}
}
