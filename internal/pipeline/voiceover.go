package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"vidx/internal/logging"
	"vidx/internal/services"
	"vidx/internal/services/openai"
)

// AudioArtifact is a synthesized voice track on local disk. The orchestrator
// owns the file's lifetime.
type AudioArtifact struct {
	Path      string
	SizeBytes int64
	Cost      float64
}

// categoryVoices maps listing categories to the TTS voice used for them.
// Categories without an entry fall back to defaultVoice.
var categoryVoices = map[string]string{
	"automotive":  "shimmer",
	"electronics": "nova",
	"fashion":     "shimmer",
}

const defaultVoice = "alloy"

// romanianInstructions steers pronunciation for Romanian scripts. Models
// that do not support instructions ignore the field.
const romanianInstructions = "Vorbește în limba română, cu pronunție naturală și diacritice corecte. Ton cald, de prezentare, nu de robot."

func voiceFor(category string) string {
	if voice, ok := categoryVoices[category]; ok {
		return voice
	}
	return defaultVoice
}

// synthesizeVoiceover streams synthesized speech into a fresh temp file under
// the work directory. The file is registered for cleanup before any bytes
// arrive so a partial write never outlives the run.
func (p *Pipeline) synthesizeVoiceover(ctx context.Context, temps *tempRegistry, script string, product ProductContext) (AudioArtifact, error) {
	logger := logging.WithContext(ctx, p.logger)

	path := filepath.Join(p.cfg.Paths.WorkDir, fmt.Sprintf("voiceover_%s.mp3", uuid.NewString()))
	file, err := os.Create(path)
	if err != nil {
		return AudioArtifact{}, services.Wrap(services.ErrSynthesis, "voiceover", "create temp file", path, err)
	}
	temps.register(path)

	req := openai.SpeechRequest{
		Model: p.cfg.OpenAI.TTSModel,
		Input: script,
		Voice: voiceFor(product.Category),
	}
	if product.NormalizedLanguage() == "ro" {
		req.Instructions = romanianInstructions
	}

	written, synthErr := p.speech.SynthesizeSpeech(ctx, req, file)
	closeErr := file.Close()
	if synthErr != nil {
		return AudioArtifact{}, services.Wrap(services.ErrSynthesis, "voiceover", "synthesize", "speech call failed", synthErr)
	}
	if closeErr != nil {
		return AudioArtifact{}, services.Wrap(services.ErrSynthesis, "voiceover", "write temp file", path, closeErr)
	}

	logger.Info("voiceover synthesized",
		logging.String("voice", req.Voice),
		logging.Int64("bytes", written))

	return AudioArtifact{
		Path:      path,
		SizeBytes: written,
		Cost:      speechCost(len(script)),
	}, nil
}
