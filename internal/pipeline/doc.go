// Package pipeline generates promotional videos for marketplace listings.
//
// A run is strictly sequential: script generation, voiceover synthesis,
// caption transcription, slideshow render, then upload of the video and a
// thumbnail. Stages fail fast with no retries; every temp file created
// during a run is removed before control returns to the caller.
package pipeline
