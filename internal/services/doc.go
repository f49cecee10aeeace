// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Sentinel error markers plus the Wrap helper that tag stage failures for
//     later classification (which stage kind failed, terminal queue status).
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
