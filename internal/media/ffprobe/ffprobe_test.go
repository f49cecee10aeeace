package ffprobe

import "testing"

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "mp3", "codec_type": "audio", "duration": "17.424000", "sample_rate": "44100", "channels": 2}
  ],
  "format": {"filename": "voiceover.mp3", "duration": "17.449796", "size": "279321", "format_name": "mp3"}
}`

func TestParseDuration(t *testing.T) {
	result, err := Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := result.DurationSeconds(); got < 17.44 || got > 17.46 {
		t.Fatalf("unexpected duration: %f", got)
	}
	if got := result.SizeBytes(); got != 279321 {
		t.Fatalf("unexpected size: %d", got)
	}
	if got := result.AudioStreamCount(); got != 1 {
		t.Fatalf("unexpected audio stream count: %d", got)
	}
}

func TestParseFallsBackToStreamDuration(t *testing.T) {
	payload := `{
      "streams": [{"index": 0, "codec_type": "audio", "duration": "12.5"}],
      "format": {"filename": "x.mp3"}
    }`
	result, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := result.DurationSeconds(); got != 12.5 {
		t.Fatalf("expected stream duration fallback, got %f", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseMissingDuration(t *testing.T) {
	result, err := Parse([]byte(`{"format": {}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("expected zero duration, got %f", got)
	}
}
