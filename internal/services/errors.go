package services

import (
	"errors"
	"fmt"
	"strings"

	"vidx/internal/queue"
)

// Sentinel markers for the pipeline error taxonomy. Stage code wraps failures
// with exactly one marker so callers can classify with errors.Is without
// depending on concrete error types.
var (
	ErrGeneration    = errors.New("script generation error")
	ErrSynthesis     = errors.New("speech synthesis error")
	ErrTranscription = errors.New("transcription error")
	ErrAssetNotFound = errors.New("asset not found")
	ErrMediaProbe    = errors.New("media probe error")
	ErrRender        = errors.New("render error")
	ErrRenderTimeout = errors.New("render timeout")
	ErrStorage       = errors.New("storage error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker. The marker should be one of the exported sentinel
// errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the queue status the worker should
// persist after a job fails. Bad inputs and misconfiguration go to review so
// operators can fix and retry; everything else is a hard failure.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrAssetNotFound):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
