// Package finder turns a single audio file into segments, either from its
// embedded chapter marks or from the non-silent stretches ffmpeg's
// silencedetect filter reports.
//
// Every segment returned is backed by the input file with file-relative
// times equal to its logical times.
package finder
