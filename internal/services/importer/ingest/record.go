// Package ingest turns archive lines into typed rows and tracks per-file side artifacts
package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	perr "redditimport/internal/platform/errors"
	ptime "redditimport/internal/platform/time"
)

// Record is an optional-field view over one JSON object.
// Absent keys and JSON null both read as nil
type Record struct{ root gjson.Result }

// NewRecord validates line as a JSON object
func NewRecord(line []byte) (Record, error) {
	if !gjson.ValidBytes(line) {
		return Record{}, perr.Malformedf("invalid json")
	}
	root := gjson.ParseBytes(line)
	if !root.IsObject() {
		return Record{}, perr.Malformedf("json %s is not an object", root.Type)
	}
	return Record{root: root}, nil
}

func (r Record) get(key string) (gjson.Result, bool) {
	v := r.root.Get(gjson.Escape(key))
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

// Str reads a string; numbers and booleans are stringified, objects and arrays read as nil
func (r Record) Str(key string) *string {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	var s string
	switch v.Type {
	case gjson.String:
		s = v.Str
	case gjson.Number, gjson.True, gjson.False:
		s = v.Raw
	default:
		return nil
	}
	return &s
}

// Int reads an integer; floats truncate, numeric strings are accepted.
// Values outside the int64 range are null
func (r Record) Int(key string) *int64 {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	var n int64
	switch v.Type {
	case gjson.Number, gjson.String:
		var ok bool
		if n, ok = parseInt(strings.TrimSpace(v.String())); !ok {
			return nil
		}
	case gjson.True:
		n = 1
	case gjson.False:
		n = 0
	default:
		return nil
	}
	return &n
}

// Bool reads a boolean; 0/1 and "true"/"false" are accepted
func (r Record) Bool(key string) *bool {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	var b bool
	switch v.Type {
	case gjson.True, gjson.False:
		b = v.Bool()
	case gjson.Number:
		b = v.Num != 0
	case gjson.String:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v.Str))
		if err != nil {
			return nil
		}
		b = parsed
	default:
		return nil
	}
	return &b
}

// Epoch reads epoch seconds (number or numeric string) as civil UTC text
func (r Record) Epoch(key string) *string {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	var sec float64
	switch v.Type {
	case gjson.Number:
		sec = v.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
		sec = f
	default:
		return nil
	}
	s, ok := ptime.EpochCivil(sec)
	if !ok {
		return nil
	}
	return &s
}

// parseInt reads an integer literal exactly and truncates anything else
// numeric. Values outside the int64 range fail
func parseInt(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}
