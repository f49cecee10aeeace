// Package ffmpeg builds and executes the slideshow render: still product
// images paced against the voiceover with zoom and fade transitions, encoded
// to a vertical 1080x1920 H.264 video.
package ffmpeg
