package errors

import (
	stderrs "errors"
	"fmt"
	"testing"
)

func TestCodeString(t *testing.T) {
	t.Parallel()

	for code, want := range map[ErrorCode]string{
		ErrorCodeUnknown:        "unknown",
		ErrorCodeMalformed:      "malformed",
		ErrorCodeDataValidity:   "data_validity",
		ErrorCodePartialArchive: "partial_archive",
		ErrorCodeDB:             "db",
		9999:                    "code(9999)",
	} {
		if got := code.String(); got != want {
			t.Fatalf("ErrorCode(%d) = %q, want %q", uint16(code), got, want)
		}
	}
}

func TestMessagesAndCodes(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("pipe closed")
	cases := []struct {
		name string
		err  error
		code ErrorCode
		msg  string
	}{
		{"new", New(ErrorCodeMalformed, "not an object"), ErrorCodeMalformed, "not an object"},
		{"newf", Newf(ErrorCodeDataValidity, "row %d rejected", 12), ErrorCodeDataValidity, "row 12 rejected"},
		{"wrap", Wrap(cause, ErrorCodeDB, "copy"), ErrorCodeDB, "copy: pipe closed"},
		{"wrapf", Wrapf(cause, ErrorCodeConnectivity, "lost %s", "zstd"), ErrorCodeConnectivity, "lost zstd: pipe closed"},
		{"invalid", InvalidArgf("bad %s", "batch"), ErrorCodeInvalidArgument, "bad batch"},
		{"not found", NotFoundf("no %s", "file"), ErrorCodeNotFound, "no file"},
		{"malformed", Malformedf("line %d", 3), ErrorCodeMalformed, "line 3"},
		{"connectivity", Connectivityf("down"), ErrorCodeConnectivity, "down"},
		{"through fmt", fmt.Errorf("RC_2020-10.zst: %w", Wrap(cause, ErrorCodePartialArchive, "read")), ErrorCodePartialArchive, "RC_2020-10.zst: read: pipe closed"},
		{"foreign", cause, ErrorCodeUnknown, "pipe closed"},
		{"sentinel", ErrNotFound, ErrorCodeNotFound, "not found"},
	}
	for _, c := range cases {
		if !IsCode(c.err, c.code) || c.err.Error() != c.msg {
			t.Fatalf("%s: code=%v msg=%q", c.name, CodeOf(c.err), c.err.Error())
		}
	}

	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}
	if stderrs.Unwrap(Wrap(cause, ErrorCodeDB, "x")) != cause {
		t.Fatalf("Unwrap lost the cause")
	}
}

func TestRelabelCopies(t *testing.T) {
	t.Parallel()

	base := Wrap(stderrs.New("too long"), ErrorCodeDataValidity, "insert")
	labelled := WithOp(WithField(base, "subreddit"), "flush")

	e, ok := As(labelled)
	if !ok || e.Field() != "subreddit" || e.Op() != "flush" || e.Code() != ErrorCodeDataValidity {
		t.Fatalf("labels = %+v", e)
	}
	if orig, _ := As(base); orig.Field() != "" || orig.Op() != "" {
		t.Fatalf("relabel mutated the original")
	}

	foreign := stderrs.New("x")
	if WithField(foreign, "c") != foreign || WithOp(foreign, "o") != foreign {
		t.Fatalf("foreign errors should pass through")
	}
}

func TestRoot(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("eof")
	if Root(fmt.Errorf("a: %w", Wrap(cause, ErrorCodeDB, "b"))) != cause {
		t.Fatalf("Root did not reach the cause")
	}
	if Root(nil) != nil {
		t.Fatalf("Root(nil) should be nil")
	}
}
