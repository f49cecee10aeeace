// Package workflow drives queued generation jobs through the video
// pipeline.
//
// A manager runs a fixed pool of workers, each claiming the oldest pending
// job, executing the pipeline, and persisting the result or failure status.
// Validation and configuration failures park jobs in review for operator
// attention; everything else fails hard and waits for an explicit retry.
package workflow
