package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleSpec(images int) SlideshowSpec {
	spec := SlideshowSpec{
		AudioPath:     "/tmp/voice.mp3",
		AudioDuration: 18.0,
		OutputPath:    "/tmp/out.mp4",
	}
	for i := 0; i < images; i++ {
		spec.Images = append(spec.Images, "/tmp/img.jpg")
	}
	return spec
}

func TestFilterGraphChainPerImage(t *testing.T) {
	spec := sampleSpec(3)
	graph := spec.FilterGraph()

	if got := strings.Count(graph, "zoompan"); got != 3 {
		t.Fatalf("expected 3 zoompan chains, got %d", got)
	}
	if !strings.Contains(graph, "concat=n=3:v=1:a=0[outv]") {
		t.Fatalf("missing concat stage: %s", graph)
	}
	if !strings.Contains(graph, "scale=1080:1920:force_original_aspect_ratio=increase") {
		t.Fatalf("missing scale stage: %s", graph)
	}
	if !strings.Contains(graph, "fade=t=out:st=5.7:d=0.3") {
		t.Fatalf("fade out not anchored to slot end: %s", graph)
	}
	// 6s per image at 30fps.
	if !strings.Contains(graph, "d=180") {
		t.Fatalf("zoompan frame count wrong: %s", graph)
	}
}

func TestSlotsCoverAudioDuration(t *testing.T) {
	spec := sampleSpec(4)
	total := spec.SlotDuration() * float64(len(spec.Images))
	if total < 17.999 || total > 18.001 {
		t.Fatalf("slots do not cover audio: %f", total)
	}
}

func TestSingleImageGraph(t *testing.T) {
	spec := sampleSpec(1)
	graph := spec.FilterGraph()
	if !strings.Contains(graph, "[v0]concat=n=1:v=1:a=0[outv]") {
		t.Fatalf("single image concat wrong: %s", graph)
	}
}

func TestArgsLayout(t *testing.T) {
	spec := sampleSpec(2)
	args := spec.Args()
	joined := strings.Join(args, " ")

	if got := strings.Count(joined, "-loop 1 -t 9 -i /tmp/img.jpg"); got != 2 {
		t.Fatalf("expected 2 looped image inputs, got %d: %s", got, joined)
	}
	if !strings.Contains(joined, "-map [outv] -map 2:a") {
		t.Fatalf("audio not mapped from final input: %s", joined)
	}
	if !strings.Contains(joined, "-c:v libx264 -preset medium -crf 23 -pix_fmt yuv420p") {
		t.Fatalf("video codec args wrong: %s", joined)
	}
	if !strings.Contains(joined, "-c:a aac -b:a 192k -movflags +faststart -t 18 /tmp/out.mp4") {
		t.Fatalf("trailing args wrong: %s", joined)
	}
}

func TestValidateRejectsEmptySpec(t *testing.T) {
	cases := []SlideshowSpec{
		{AudioPath: "a.mp3", AudioDuration: 5, OutputPath: "o.mp4"},
		{Images: []string{"i.jpg"}, AudioDuration: 5, OutputPath: "o.mp4"},
		{Images: []string{"i.jpg"}, AudioPath: "a.mp3", OutputPath: "o.mp4"},
		{Images: []string{"i.jpg"}, AudioPath: "a.mp3", AudioDuration: 5},
	}
	for i, spec := range cases {
		if err := spec.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestRunnerReportsToolDiagnostics(t *testing.T) {
	runner := NewRunner("ffmpeg", time.Minute)
	runner.run = func(ctx context.Context, binary string, args []string) ([]byte, error) {
		return []byte("frame=1\nNo such file or directory\n"), errors.New("exit status 1")
	}

	err := runner.Render(context.Background(), sampleSpec(2))
	if err == nil || !strings.Contains(err.Error(), "No such file or directory") {
		t.Fatalf("expected diagnostic in error, got %v", err)
	}
}

func TestRunnerTimeout(t *testing.T) {
	runner := NewRunner("ffmpeg", time.Millisecond)
	runner.run = func(ctx context.Context, binary string, args []string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	err := runner.Render(context.Background(), sampleSpec(1))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestBurnSubtitlesArgsEscapesPath(t *testing.T) {
	args := BurnSubtitlesArgs("/tmp/in.mp4", "/tmp/a'b.srt", "/tmp/out.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, `subtitles=/tmp/a\'b.srt`) {
		t.Fatalf("srt path not escaped: %s", joined)
	}
	if !strings.Contains(joined, "-c:a copy") {
		t.Fatalf("audio should be copied: %s", joined)
	}
}
