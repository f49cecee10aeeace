package config

const (
	defaultDataDir = "~/.local/share/vidx"
	defaultWorkDir = "~/.local/share/vidx/work"
	defaultLogDir  = "~/.local/share/vidx/logs"

	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultChatModel       = "gpt-4o-mini"
	defaultTTSModel        = "gpt-4o-mini-tts"
	defaultTranscribeModel = "whisper-1"
	defaultOpenAITimeout   = 120

	defaultStorageRegion = "auto"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultRenderTimeout = 300

	defaultMaxWords          = 90
	defaultWordsPerMinuteRO  = 130
	defaultWordsPerMinuteEN  = 150
	defaultMaxOutputTokens   = 220
	defaultTemperaturePct    = 70
	defaultDurationBufferSec = 2

	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultWorkers            = 2

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		OpenAI: OpenAI{
			BaseURL:         defaultOpenAIBaseURL,
			ChatModel:       defaultChatModel,
			TTSModel:        defaultTTSModel,
			TranscribeModel: defaultTranscribeModel,
			TimeoutSeconds:  defaultOpenAITimeout,
		},
		Storage: Storage{
			Region: defaultStorageRegion,
			UseSSL: true,
		},
		Render: Render{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultRenderTimeout,
		},
		Script: Script{
			MaxWords:          defaultMaxWords,
			WordsPerMinuteRO:  defaultWordsPerMinuteRO,
			WordsPerMinuteEN:  defaultWordsPerMinuteEN,
			MaxOutputTokens:   defaultMaxOutputTokens,
			TemperaturePct:    defaultTemperaturePct,
			DurationBufferSec: defaultDurationBufferSec,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			Workers:            defaultWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
