// Package audiobook aggregates audio files or chapter marks into a Book and
// renders it into a single chaptered .m4b container.
//
// A Book is filled by one or more scans; each scan appends, continuing the
// ids and logical times of the chapters already present. Bind then chooses
// between rewriting the chapter table of a single backing file in place
// (the fast path) and re-encoding every chapter to a fragment before
// concatenating them (the multi-segment path).
//
// Books are not safe for concurrent use.
package audiobook
