// Package ffprobe wraps the ffprobe binary for media metadata extraction.
// The pipeline uses it to derive the voiceover duration that drives
// per-image timing in the render.
package ffprobe
