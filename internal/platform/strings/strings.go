// Package strings provides small string helpers shared by adapters
package strings

import std "strings"

// Tail returns at most the last n bytes of s, trimmed, with a leading marker when cut
func Tail(s string, n int) string {
	s = std.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
