package pipeline

import (
	"context"
	"strings"

	"vidx/internal/logging"
	"vidx/internal/services"
	"vidx/internal/services/openai"
)

// CaptionWord is a single spoken word with its time span in seconds.
type CaptionWord struct {
	Word  string
	Start float64
	End   float64
}

// CaptionSet is the transcription of a voice track. Words are ordered by
// start time as delivered by the transcription service; an empty word list
// with non-empty text is a valid, degraded result.
type CaptionSet struct {
	Text     string
	Words    []CaptionWord
	Duration float64
}

// transcribeCaptions produces word-timestamped captions for the voiceover.
func (p *Pipeline) transcribeCaptions(ctx context.Context, audioPath, lang string) (CaptionSet, error) {
	logger := logging.WithContext(ctx, p.logger)

	result, err := p.transcriber.Transcribe(ctx, openai.TranscriptionRequest{
		Model:    p.cfg.OpenAI.TranscribeModel,
		FilePath: audioPath,
		Language: lang,
	})
	if err != nil {
		return CaptionSet{}, services.Wrap(services.ErrTranscription, "captions", "transcribe", "transcription call failed", err)
	}

	set := CaptionSet{
		Text:     strings.TrimSpace(result.Text),
		Duration: result.Duration,
	}
	for _, word := range result.Words {
		set.Words = append(set.Words, CaptionWord{
			Word:  strings.TrimSpace(word.Word),
			Start: word.Start,
			End:   word.End,
		})
	}

	if len(set.Words) == 0 {
		logger.Warn("transcription returned no word timestamps, captions degrade to full text",
			logging.Float64("duration_sec", set.Duration))
	} else {
		logger.Info("captions transcribed",
			logging.Int("words", len(set.Words)),
			logging.Float64("duration_sec", set.Duration))
	}
	return set, nil
}
