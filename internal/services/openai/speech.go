package openai

import (
	"context"
	"fmt"
	"io"
)

// speechChunkSize matches the streaming granularity used for writing audio
// to disk as it arrives.
const speechChunkSize = 4096

// SpeechRequest describes a text-to-speech synthesis call. The response is
// always requested as MP3 at normal speed.
type SpeechRequest struct {
	Model        string  `json:"model"`
	Input        string  `json:"input"`
	Voice        string  `json:"voice"`
	Format       string  `json:"response_format"`
	Speed        float64 `json:"speed"`
	Instructions string  `json:"instructions,omitempty"`
}

// SynthesizeSpeech streams synthesized audio into w and reports the byte
// count written. The body is consumed incrementally so large clips never
// buffer fully in memory.
func (c *Client) SynthesizeSpeech(ctx context.Context, req SpeechRequest, w io.Writer) (int64, error) {
	if req.Format == "" {
		req.Format = "mp3"
	}
	if req.Speed == 0 {
		req.Speed = 1.0
	}

	resp, err := c.postJSON(ctx, "/audio/speech", req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	written, err := io.CopyBuffer(w, resp.Body, make([]byte, speechChunkSize))
	if err != nil {
		return written, fmt.Errorf("openai speech stream: %w", err)
	}
	if written == 0 {
		return 0, fmt.Errorf("openai speech: empty audio response")
	}
	return written, nil
}
