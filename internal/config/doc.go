// Package config loads, normalizes, and validates m4bind configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// M4BIND_FFMPEG. Command-line flags are layered on top by the CLI after Load
// returns, so every command sees one sanitized Config.
package config
