// Package openai talks to the OpenAI REST API for the three capabilities
// the pipeline needs: script generation via chat completions, voiceover
// synthesis via text-to-speech, and word-timestamped transcription.
//
// The client makes exactly one attempt per call. Surfacing the failure to
// the queue is the job of the pipeline, not this package.
package openai
