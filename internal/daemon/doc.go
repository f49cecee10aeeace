// Package daemon runs the background video generation service: a
// single-instance lock, the job queue, and the workflow worker pool, tied
// into one start/stop lifecycle.
package daemon
