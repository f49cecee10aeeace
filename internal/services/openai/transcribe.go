package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// TranscriptionRequest describes a word-timestamped transcription call.
type TranscriptionRequest struct {
	Model    string
	FilePath string
	Language string
}

// Word is a single recognized word with its time span in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcription is the verbose transcription payload. Words may be empty
// when the model returns no word-level timestamps for a clip.
type Transcription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Words    []Word  `json:"words"`
}

// Transcribe uploads an audio file and returns its verbose transcription
// with word-level timestamps.
func (c *Client) Transcribe(ctx context.Context, req TranscriptionRequest) (Transcription, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		return Transcription{}, fmt.Errorf("openai transcribe: open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return Transcription{}, fmt.Errorf("openai transcribe: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Transcription{}, fmt.Errorf("openai transcribe: read audio: %w", err)
	}
	fields := map[string]string{
		"model":                     req.Model,
		"response_format":           "verbose_json",
		"timestamp_granularities[]": "word",
	}
	if lang := strings.TrimSpace(req.Language); lang != "" {
		fields["language"] = lang
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return Transcription{}, fmt.Errorf("openai transcribe: build form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return Transcription{}, fmt.Errorf("openai transcribe: build form: %w", err)
	}

	resp, err := c.do(ctx, "POST", "/audio/transcriptions", form.FormDataContentType(), &body)
	if err != nil {
		return Transcription{}, err
	}
	defer resp.Body.Close()

	var decoded Transcription
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Transcription{}, fmt.Errorf("openai transcribe decode: %w", err)
	}
	return decoded, nil
}
