package pipeline

import (
	"context"

	"adstudio/internal/domain"
	"adstudio/internal/media"
	"adstudio/internal/providers/content"
	"adstudio/internal/providers/safety"
)

// ContentGenerator writes the three-segment script for a day.
type ContentGenerator interface {
	Generate(ctx context.Context, req content.GenerateRequest) (domain.AdContent, error)
}

// Auditor reviews segment text. It never fails.
type Auditor interface {
	Audit(ctx context.Context, text, key string) safety.AuditResult
}

// Synthesizer renders narration audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, key string) ([]byte, error)
}

// FootageResolver maps keywords to a downloadable clip URL.
type FootageResolver interface {
	Resolve(ctx context.Context, keywords, key string) (string, error)
}

// Downloader fetches a resolved clip to a local file.
type Downloader interface {
	Download(ctx context.Context, link, dest string) error
}

// Composer encodes one captioned segment.
type Composer interface {
	Compose(ctx context.Context, req media.ComposeRequest) (media.ComposeResult, error)
}

// Concatenator joins composed segments into a single file.
type Concatenator interface {
	Concat(ctx context.Context, segments []string, output string) error
}

// DayRunner produces the ad for one day.
type DayRunner interface {
	Run(ctx context.Context, in DayInput) (domain.DayResult, error)
}
