// Package main hosts the m4bind CLI entrypoint and command graph.
//
// Each subcommand resolves configuration and logging through a shared
// commandContext, builds the internal services it needs, and reports one
// diagnostic on failure. Audio work always happens in the internal packages;
// this package only parses flags and prints results.
package main
