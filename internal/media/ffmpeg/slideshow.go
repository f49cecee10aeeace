package ffmpeg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Fixed output policy for marketplace promo videos: vertical 1080x1920,
// H.264 + AAC, faststart container layout. These are deliberate policy
// choices, not per-call knobs.
const (
	FrameWidth  = 1080
	FrameHeight = 1920
	FrameRate   = 30

	fadeDuration = 0.3
	zoomStep     = "0.001"

	videoCodec   = "libx264"
	videoPreset  = "medium"
	videoCRF     = "23"
	pixelFormat  = "yuv420p"
	audioCodec   = "aac"
	audioBitrate = "192k"
)

// SlideshowSpec describes one slideshow render: N still images spread evenly
// across the voiceover duration, each with a slow zoom and cross-fade edges.
type SlideshowSpec struct {
	Images        []string
	AudioPath     string
	AudioDuration float64
	OutputPath    string
}

// Validate checks that the slideshow can be rendered.
func (s SlideshowSpec) Validate() error {
	if len(s.Images) == 0 {
		return errors.New("slideshow: at least one image required")
	}
	if strings.TrimSpace(s.AudioPath) == "" {
		return errors.New("slideshow: audio path required")
	}
	if s.AudioDuration <= 0 {
		return errors.New("slideshow: audio duration must be positive")
	}
	if strings.TrimSpace(s.OutputPath) == "" {
		return errors.New("slideshow: output path required")
	}
	return nil
}

// SlotDuration returns the display time allotted to each image. The split is
// uniform; slots always sum to the audio duration.
func (s SlideshowSpec) SlotDuration() float64 {
	if len(s.Images) == 0 {
		return 0
	}
	return s.AudioDuration / float64(len(s.Images))
}

// FilterGraph builds the filter_complex expression: per-image scale, crop,
// zoompan, and fade chains, then a single concat of all clips.
func (s SlideshowSpec) FilterGraph() string {
	slot := s.SlotDuration()
	frames := int(slot * FrameRate)
	if frames < 1 {
		frames = 1
	}
	fadeOutStart := slot - fadeDuration
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}

	var filters []string
	for i := range s.Images {
		filters = append(filters, fmt.Sprintf(
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,"+
				"crop=%d:%d,"+
				"zoompan=z='zoom+%s':d=%d:s=%dx%d,"+
				"fade=t=in:st=0:d=%s,fade=t=out:st=%s:d=%s[v%d]",
			i, FrameWidth, FrameHeight,
			FrameWidth, FrameHeight,
			zoomStep, frames, FrameWidth, FrameHeight,
			formatSeconds(fadeDuration), formatSeconds(fadeOutStart), formatSeconds(fadeDuration),
			i,
		))
	}

	var concat strings.Builder
	for i := range s.Images {
		fmt.Fprintf(&concat, "[v%d]", i)
	}
	fmt.Fprintf(&concat, "concat=n=%d:v=1:a=0[outv]", len(s.Images))
	filters = append(filters, concat.String())

	return strings.Join(filters, ";")
}

// Args builds the complete ffmpeg argument list for the render. The audio
// track is mapped from the final input untouched and the container is
// clamped to the audio duration.
func (s SlideshowSpec) Args() []string {
	slot := formatSeconds(s.SlotDuration())

	args := []string{"-y"}
	for _, image := range s.Images {
		args = append(args, "-loop", "1", "-t", slot, "-i", image)
	}
	args = append(args, "-i", s.AudioPath)
	args = append(args,
		"-filter_complex", s.FilterGraph(),
		"-map", "[outv]",
		"-map", fmt.Sprintf("%d:a", len(s.Images)),
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-pix_fmt", pixelFormat,
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-movflags", "+faststart",
		"-t", formatSeconds(s.AudioDuration),
		s.OutputPath,
	)
	return args
}

// BurnSubtitlesArgs builds the argument list for burning an SRT file into an
// already rendered video. The audio stream is copied through unchanged.
func BurnSubtitlesArgs(videoPath, srtPath, outputPath string) []string {
	style := "FontName=Arial,FontSize=14,PrimaryColour=&HFFFFFF&,OutlineColour=&H000000&,Outline=2,Alignment=2,MarginV=60"
	return []string{
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(srtPath), style),
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-c:a", "copy",
		"-movflags", "+faststart",
		outputPath,
	}
}

// escapeFilterPath escapes characters the ffmpeg filter parser treats
// specially in filenames.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return replacer.Replace(path)
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
