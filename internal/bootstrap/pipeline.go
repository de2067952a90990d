package bootstrap

import (
	"net/http"
	"path/filepath"

	"github.com/go-redis/redis/v8"

	"adstudio/internal/adapter/repo"
	"adstudio/internal/infra"
	"adstudio/internal/infra/credentials"
	"adstudio/internal/media"
	"adstudio/internal/pipeline"
	"adstudio/internal/providers/content"
	"adstudio/internal/providers/footage"
	"adstudio/internal/providers/safety"
	"adstudio/internal/providers/voice"
	"adstudio/internal/storage"
)

// Services are the long lived components shared by the api, adgen and worker
// commands.
type Services struct {
	Projects    *repo.ProjectRepositoryPG
	Credentials *credentials.Store
	Store       *storage.ArtifactStore
	Batch       *pipeline.Batch
}

// NewServices wires providers, media tools and storage into a batch runner.
// The locker decides whether concurrent runs are guarded per process or
// across processes.
func NewServices(cfg *infra.Config, sql infra.SQLExecutor, locker pipeline.Locker, logger infra.Logger) (*Services, error) {
	tools, err := infra.ResolveMediaTools(cfg.Media)
	if err != nil {
		return nil, err
	}
	outputRoot := cfg.OutputRoot
	if abs, err := filepath.Abs(outputRoot); err == nil {
		outputRoot = abs
	}
	store, err := storage.NewArtifactStore(outputRoot)
	if err != nil {
		return nil, err
	}

	component := func(name string) *infra.Logger {
		l := logger.With().Str("component", name).Logger()
		return &l
	}
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	runner := media.ExecRunner{}

	probe, err := media.NewProbe(tools.FFprobe, runner)
	if err != nil {
		return nil, err
	}
	composer, err := media.NewComposer(media.ComposerOptions{
		FFmpeg:   tools.FFmpeg,
		Probe:    probe,
		Runner:   runner,
		FontFile: cfg.Media.CaptionFont,
		Logger:   component("media"),
	})
	if err != nil {
		return nil, err
	}
	concat, err := media.NewConcatenator(tools.FFmpeg, runner, component("media"))
	if err != nil {
		return nil, err
	}

	day, err := pipeline.NewDayOrchestrator(pipeline.DayOptions{
		Content: content.NewOpenAIGenerator(content.Options{
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			HTTPClient: httpClient,
			Logger:     component("content"),
		}),
		Auditor: safety.NewGeminiAuditor(safety.GeminiOptions{
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
			Logger:     component("safety"),
		}),
		Voice: voice.NewElevenLabs(voice.Options{
			BaseURL:    cfg.ElevenLabsBaseURL,
			HTTPClient: httpClient,
			Logger:     component("voice"),
		}),
		Footage: footage.NewPexels(footage.Options{
			BaseURL:    cfg.PexelsBaseURL,
			HTTPClient: httpClient,
			Logger:     component("footage"),
		}),
		Downloader: footage.NewDownloader(nil),
		Composer:   composer,
		Concat:     concat,
		Store:      store,
		Logger:     component("pipeline"),
	})
	if err != nil {
		return nil, err
	}

	projects := repo.NewProjectRepository(sql)
	creds := credentials.NewStore(sql)
	batch, err := pipeline.NewBatch(pipeline.BatchOptions{
		Day:         day,
		Projects:    projects,
		Credentials: creds,
		Locker:      locker,
		Logger:      component("pipeline"),
	})
	if err != nil {
		return nil, err
	}
	return &Services{Projects: projects, Credentials: creds, Store: store, Batch: batch}, nil
}

// NewLocker returns a Redis backed lock when client is set, otherwise an
// in-process one. The client stays owned by the caller.
func NewLocker(client *redis.Client, logger infra.Logger) pipeline.Locker {
	if client == nil {
		logger.Warn().Msg("bootstrap: REDIS_URL not set, batch lock is per process")
		return pipeline.NewLocalLocker()
	}
	return pipeline.NewRedisLocker(client, 0)
}
