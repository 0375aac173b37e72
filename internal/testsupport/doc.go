// Package testsupport holds helpers shared by package tests: temp-dir backed
// configs, stub ffmpeg/ffprobe scripts, and filler files.
package testsupport
