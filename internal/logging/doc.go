// Package logging builds the slog loggers used across vidx.
//
// Two output formats are supported: a human-oriented console format
// (timestamp, level, component prefix, key=value attrs) and line-delimited
// JSON for ingestion. Helper constructors standardize attribute keys so the
// pipeline, workflow manager, and CLI emit consistent fields.
package logging
