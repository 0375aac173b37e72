// Package natsort orders file names the way people count: "part2" before
// "part10".
package natsort

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Less reports whether a sorts before b. Comparison is case-insensitive;
// names that differ only by case fall back to byte order so the result is
// deterministic.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return a < b
	}
	return natural.Less(la, lb)
}

// Strings sorts names in place.
func Strings(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return Less(names[i], names[j]) })
}

// Sorted returns a naturally sorted copy of names.
func Sorted(names []string) []string {
	out := append([]string(nil), names...)
	Strings(out)
	return out
}
