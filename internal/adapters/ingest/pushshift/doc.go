// Package pushshift knows the Reddit archive file layout: which names are
// importable, which monthly table they load into, how to stream their lines
// and where to download them from
//
// Design choices:
// - Names are matched whole and case-sensitive; anything off-pattern is skipped, never guessed at.
// - Lines are streamed with bufio.Scanner capped at 64MB so one huge selftext cannot exhaust memory.
// - A decode error or a non-zero decompressor exit after some lines is a partial archive, not a crash.
package pushshift
