// Package taskrunner executes a list of independent external-tool jobs on a
// fixed pool of workers and reports their lifecycle to a display.
//
// Each task produces a Started event, zero or more non-decreasing Progress
// events, and exactly one Finished or Failed event. A failing task never
// stops its siblings; failures are collected in the returned Summary.
package taskrunner
