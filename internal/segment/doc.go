// Package segment models one chapter or detected audio span.
//
// A Segment carries two coordinate spaces: the logical timeline of the
// assembled book and, when backed by a source file, the span within that
// file supplying its audio. Every time value is normalized to millisecond
// precision when a Segment is built or updated, so repeated scans and
// shifts do not accumulate float drift.
//
// Slide and TrimStart move chapter boundaries while pinning the outer span of
// a sequence; the labels helpers convert to and from Audacity label files.
package segment
