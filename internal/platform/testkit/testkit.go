// Package testkit holds the helpers shared by the importer tests: assertions,
// seam replacement, archive fixtures and a throwaway Postgres
package testkit

import (
	"strings"
	"sync"
	"testing"

	pstrings "redditimport/internal/platform/strings"
)

// MustPanic fails the test unless fn panics and returns the recovered value
func MustPanic(t *testing.T, fn func()) (v any) {
	t.Helper()
	defer func() {
		v = recover()
		if v == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
	return nil
}

// MustContain fails when haystack lacks needle, quoting the end of haystack
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\ngot: %s", needle, pstrings.Tail(haystack, 2048))
	}
}

var seams sync.Mutex

// Seam replaces a package level variable (usually a constructor such as newPool)
// for the rest of the test. Tests replacing seams run one at a time and the
// original value comes back on cleanup
func Seam[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	seams.Lock()
	orig := *target
	*target = replacement
	t.Cleanup(func() {
		*target = orig
		seams.Unlock()
	})
}
