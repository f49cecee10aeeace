package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"vidx/internal/config"
	"vidx/internal/logging"
	"vidx/internal/media/ffmpeg"
	"vidx/internal/media/ffprobe"
	"vidx/internal/services"
	"vidx/internal/services/openai"
	"vidx/internal/storage"
)

// ChatClient generates ad copy.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatRequest) (openai.ChatResult, error)
}

// SpeechClient synthesizes a voice track into w.
type SpeechClient interface {
	SynthesizeSpeech(ctx context.Context, req openai.SpeechRequest, w io.Writer) (int64, error)
}

// TranscribeClient produces word-timestamped transcriptions.
type TranscribeClient interface {
	Transcribe(ctx context.Context, req openai.TranscriptionRequest) (openai.Transcription, error)
}

// Renderer runs the slideshow render and the optional caption burn-in.
type Renderer interface {
	Render(ctx context.Context, spec ffmpeg.SlideshowSpec) error
	BurnSubtitles(ctx context.Context, videoPath, srtPath, outputPath string) error
}

// Prober extracts media metadata from a local file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Uploader pushes a local file to object storage.
type Uploader interface {
	UploadFile(ctx context.Context, path string) (storage.UploadResult, error)
}

// Dependencies bundles the pipeline's external collaborators. Tests inject
// fakes here; production wiring comes from New.
type Dependencies struct {
	Chat        ChatClient
	Speech      SpeechClient
	Transcriber TranscribeClient
	Renderer    Renderer
	Prober      Prober
	Uploader    Uploader
}

// Pipeline turns a product context plus staged images into an uploaded promo
// video. A Pipeline is stateless across runs and safe for concurrent use;
// each run owns its temp files exclusively.
type Pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	chat        ChatClient
	speech      SpeechClient
	transcriber TranscribeClient
	renderer    Renderer
	prober      Prober
	uploader    Uploader
}

// Result is the aggregated outcome of a successful run. Cost is a price-list
// estimate, not a billed total.
type Result struct {
	VideoURL     string
	ThumbnailURL string
	Script       string
	Captions     string
	WordCount    int
	Duration     float64
	Cost         float64
}

// New wires a pipeline with production clients derived from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	uploader, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init storage", "", err)
	}
	client := openai.New(cfg.OpenAI)
	renderTimeout := time.Duration(cfg.Render.TimeoutSeconds) * time.Second
	deps := Dependencies{
		Chat:        client,
		Speech:      client,
		Transcriber: client,
		Renderer:    ffmpeg.NewRunner(cfg.Render.FFmpegBinary, renderTimeout),
		Prober:      binaryProber{binary: cfg.Render.FFprobeBinary},
		Uploader:    uploader,
	}
	return NewWithDependencies(cfg, logger, deps), nil
}

// NewWithDependencies wires a pipeline with explicit collaborators.
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, deps Dependencies) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		chat:        deps.Chat,
		speech:      deps.Speech,
		transcriber: deps.Transcriber,
		renderer:    deps.Renderer,
		prober:      deps.Prober,
		uploader:    deps.Uploader,
	}
}

// Run executes the full pipeline: script, voiceover, captions, render,
// upload. Every temp file created along the way is removed before Run
// returns, on success and on failure alike. The first stage error is
// returned tagged with its taxonomy marker and no result is produced.
func (p *Pipeline) Run(ctx context.Context, product ProductContext, images []string) (*Result, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run", "at least one image is required", nil)
	}

	temps := newTempRegistry()
	defer temps.cleanup(p.logger)

	script, err := p.generateScript(services.WithStage(ctx, "script"), product)
	if err != nil {
		return nil, err
	}

	audio, err := p.synthesizeVoiceover(services.WithStage(ctx, "voiceover"), temps, script.Text, product)
	if err != nil {
		return nil, err
	}

	captions, err := p.transcribeCaptions(services.WithStage(ctx, "captions"), audio.Path, product.NormalizedLanguage())
	if err != nil {
		return nil, err
	}

	video, err := p.assembleVideo(services.WithStage(ctx, "video"), temps, images, audio.Path, captions)
	if err != nil {
		return nil, err
	}

	uploadCtx := services.WithStage(ctx, "upload")
	videoObject, err := p.uploader.UploadFile(uploadCtx, video.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "upload", "video", video.Path, err)
	}
	thumbObject, err := p.uploader.UploadFile(uploadCtx, images[0])
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "upload", "thumbnail", images[0], err)
	}

	result := &Result{
		VideoURL:     videoObject.URL,
		ThumbnailURL: thumbObject.URL,
		Script:       script.Text,
		Captions:     captions.Text,
		WordCount:    script.WordCount,
		Duration:     video.Duration,
		Cost:         script.Cost + audio.Cost + transcriptionCost(captions.Duration),
	}
	logging.WithContext(ctx, p.logger).Info("pipeline complete",
		logging.String("video_url", result.VideoURL),
		logging.Float64("duration_sec", result.Duration),
		logging.Float64("estimated_cost_usd", result.Cost))
	return result, nil
}

// tempRegistry tracks temp files created during one run. Registration
// happens at creation time; a single cleanup pass runs on every exit path.
type tempRegistry struct {
	mu    sync.Mutex
	paths []string
}

func newTempRegistry() *tempRegistry {
	return &tempRegistry{}
}

func (r *tempRegistry) register(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// cleanup deletes every registered file still on disk. Individual deletion
// failures are logged and never escalate, so one stuck file cannot mask the
// run's primary error or block removal of the rest.
func (r *tempRegistry) cleanup(logger *slog.Logger) {
	r.mu.Lock()
	paths := append([]string(nil), r.paths...)
	r.mu.Unlock()

	for _, path := range paths {
		err := os.Remove(path)
		if err == nil || os.IsNotExist(err) {
			continue
		}
		if logger != nil {
			logger.Warn("temp file cleanup failed",
				logging.String("path", path),
				logging.Error(err))
		}
	}
}

// binaryProber binds the configured ffprobe binary to the Prober contract.
type binaryProber struct {
	binary string
}

func (b binaryProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, b.binary, path)
}
