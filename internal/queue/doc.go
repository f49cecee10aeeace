// Package queue persists video generation jobs in SQLite.
//
// The surrounding web layer (out of process) enqueues listing details and
// image paths; the workflow manager claims pending jobs, runs the pipeline,
// and writes back the result record or the failure classification. The store
// uses WAL mode with a short busy-retry loop so the CLI and the daemon can
// share the database safely.
package queue
