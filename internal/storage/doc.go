// Package storage uploads finished videos and thumbnails to an
// S3-compatible bucket and derives the public URLs handed back to callers.
package storage
