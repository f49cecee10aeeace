package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// commandRunner executes an external command and returns its combined output.
// Tests replace it to avoid invoking a real ffmpeg binary.
type commandRunner func(ctx context.Context, binary string, args []string) ([]byte, error)

// Runner executes ffmpeg renders with a hard wall-clock bound.
type Runner struct {
	binary  string
	timeout time.Duration
	run     commandRunner
}

// NewRunner builds a runner for the given ffmpeg binary. An empty binary
// falls back to "ffmpeg" on PATH; a non-positive timeout disables the bound.
func NewRunner(binary string, timeout time.Duration) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{
		binary:  binary,
		timeout: timeout,
		run:     runCommand,
	}
}

// Render executes the slideshow render described by spec. A run that exceeds
// the configured timeout returns an error satisfying
// errors.Is(err, context.DeadlineExceeded).
func (r *Runner) Render(ctx context.Context, spec SlideshowSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	return r.execute(ctx, spec.Args())
}

// BurnSubtitles re-encodes the video with the SRT file burned into the frame.
func (r *Runner) BurnSubtitles(ctx context.Context, videoPath, srtPath, outputPath string) error {
	if strings.TrimSpace(videoPath) == "" || strings.TrimSpace(srtPath) == "" || strings.TrimSpace(outputPath) == "" {
		return errors.New("burn subtitles: video, srt, and output paths required")
	}
	return r.execute(ctx, BurnSubtitlesArgs(videoPath, srtPath, outputPath))
}

func (r *Runner) execute(ctx context.Context, args []string) error {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	output, err := r.run(runCtx, r.binary, args)
	if err == nil {
		return nil
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s timed out after %s: %w", r.binary, r.timeout, context.DeadlineExceeded)
	}
	diagnostic := tailLines(string(output), 12)
	if diagnostic == "" {
		return fmt.Errorf("%s failed: %w", r.binary, err)
	}
	return fmt.Errorf("%s failed: %w: %s", r.binary, err, diagnostic)
}

// tailLines keeps the last n non-empty lines of tool output. ffmpeg prints
// the actionable error at the end of a long progress log.
func tailLines(output string, n int) string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
