// Package textutil normalizes titles and file names derived from tags and
// paths.
//
// Everything is converted to Unicode NFC first so that names read from
// macOS file systems (which store NFD) compare and print the same as names
// typed by hand or read from tags.
package textutil
