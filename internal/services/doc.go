// Package services defines shared plumbing consumed by the bind, split, and
// slide pipelines.
//
// Key responsibilities:
//   - Context helpers that stamp the running operation and workspace run ID
//     so log lines from concurrent encode workers can be correlated.
//   - Structured error markers plus the Wrap helper that classify failures
//     into soft skips, precondition failures, and fatal external-tool errors.
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform across commands.
package services
