package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"vidx/internal/logging"
	"vidx/internal/media/ffmpeg"
	"vidx/internal/services"
)

// VideoArtifact is the rendered vertical video on local disk, owned by the
// orchestrator until upload completes.
type VideoArtifact struct {
	Path      string
	Duration  float64
	SizeBytes int64
}

// assembleVideo renders the slideshow from the staged images and the
// voiceover, then burns captions in when word timestamps are available.
// All input files are checked up front so a missing asset never reaches
// the renderer.
func (p *Pipeline) assembleVideo(ctx context.Context, temps *tempRegistry, images []string, audioPath string, captions CaptionSet) (VideoArtifact, error) {
	logger := logging.WithContext(ctx, p.logger)

	if len(images) == 0 {
		return VideoArtifact{}, services.Wrap(services.ErrValidation, "video", "assemble", "at least one image is required", nil)
	}
	for _, path := range append(append([]string{}, images...), audioPath) {
		if err := requireFile(path); err != nil {
			return VideoArtifact{}, err
		}
	}

	probed, err := p.prober.Inspect(ctx, audioPath)
	if err != nil {
		return VideoArtifact{}, services.Wrap(services.ErrMediaProbe, "video", "probe audio", audioPath, err)
	}
	duration := probed.DurationSeconds()
	if duration <= 0 {
		return VideoArtifact{}, services.Wrap(services.ErrMediaProbe, "video", "probe audio", fmt.Sprintf("no duration reported for %s", audioPath), nil)
	}

	outputPath := filepath.Join(p.cfg.Paths.WorkDir, fmt.Sprintf("video_%s.mp4", uuid.NewString()))
	temps.register(outputPath)

	spec := ffmpeg.SlideshowSpec{
		Images:        images,
		AudioPath:     audioPath,
		AudioDuration: duration,
		OutputPath:    outputPath,
	}
	logger.Info("rendering slideshow",
		logging.Int("images", len(images)),
		logging.Float64("audio_duration_sec", duration),
		logging.Float64("seconds_per_image", spec.SlotDuration()))

	if err := p.renderer.Render(ctx, spec); err != nil {
		return VideoArtifact{}, classifyRenderError("render", err)
	}
	if err := requireRenderOutput(outputPath); err != nil {
		return VideoArtifact{}, err
	}

	finalPath := outputPath
	if len(captions.Words) > 0 {
		finalPath, err = p.burnCaptions(ctx, temps, outputPath, captions)
		if err != nil {
			return VideoArtifact{}, err
		}
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return VideoArtifact{}, services.Wrap(services.ErrRender, "video", "stat output", finalPath, err)
	}
	return VideoArtifact{
		Path:      finalPath,
		Duration:  duration,
		SizeBytes: info.Size(),
	}, nil
}

// burnCaptions writes the deterministic SRT document and re-encodes the
// video with subtitles in frame.
func (p *Pipeline) burnCaptions(ctx context.Context, temps *tempRegistry, videoPath string, captions CaptionSet) (string, error) {
	srtPath := filepath.Join(p.cfg.Paths.WorkDir, fmt.Sprintf("captions_%s.srt", uuid.NewString()))
	temps.register(srtPath)
	if err := os.WriteFile(srtPath, []byte(BuildSRT(captions.Words)), 0o644); err != nil {
		return "", services.Wrap(services.ErrRender, "video", "write captions", srtPath, err)
	}

	burnedPath := filepath.Join(p.cfg.Paths.WorkDir, fmt.Sprintf("video_captioned_%s.mp4", uuid.NewString()))
	temps.register(burnedPath)
	if err := p.renderer.BurnSubtitles(ctx, videoPath, srtPath, burnedPath); err != nil {
		return "", classifyRenderError("burn captions", err)
	}
	if err := requireRenderOutput(burnedPath); err != nil {
		return "", err
	}
	return burnedPath, nil
}

func classifyRenderError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrRenderTimeout, "video", operation, "render exceeded time budget", err)
	}
	return services.Wrap(services.ErrRender, "video", operation, "renderer failed", err)
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrAssetNotFound, "video", "check inputs", path, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return services.Wrap(services.ErrAssetNotFound, "video", "check inputs", fmt.Sprintf("%s is empty or not a file", path), nil)
	}
	return nil
}

func requireRenderOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrRender, "video", "check output", fmt.Sprintf("renderer produced no file at %s", path), err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrRender, "video", "check output", fmt.Sprintf("renderer produced empty file at %s", path), nil)
	}
	return nil
}
