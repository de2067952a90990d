package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/media"
	"adstudio/internal/providers/content"
	"adstudio/internal/providers/safety"
)

type stubContent struct {
	calls   int
	ad      domain.AdContent
	err     error
	lastReq content.GenerateRequest
}

func (s *stubContent) Generate(_ context.Context, req content.GenerateRequest) (domain.AdContent, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return domain.AdContent{}, s.err
	}
	return s.ad, nil
}

type stubAuditor struct {
	rewrite map[string]string
}

func (s stubAuditor) Audit(_ context.Context, text, key string) safety.AuditResult {
	if key == "" {
		return safety.AuditResult{SafeScript: text}
	}
	if safe, ok := s.rewrite[text]; ok {
		return safety.AuditResult{SafeScript: safe, WasModified: true}
	}
	return safety.AuditResult{SafeScript: text}
}

type stubVoice struct {
	texts []string
	err   error
}

func (s *stubVoice) Synthesize(_ context.Context, text, key string) ([]byte, error) {
	if key == "" {
		return nil, domain.ErrMissingCredential
	}
	if s.err != nil {
		return nil, s.err
	}
	s.texts = append(s.texts, text)
	return []byte("mp3:" + text), nil
}

type stubFootage struct {
	queries []string
	err     error
}

func (s *stubFootage) Resolve(_ context.Context, keywords, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: pexels api key", domain.ErrMissingCredential)
	}
	s.queries = append(s.queries, keywords)
	if s.err != nil {
		return "", s.err
	}
	return "https://videos.example/" + strings.ReplaceAll(keywords, " ", "-") + ".mp4", nil
}

type stubDownloader struct{}

func (stubDownloader) Download(_ context.Context, link, dest string) error {
	return os.WriteFile(dest, []byte(link), 0o644)
}

type stubComposer struct {
	requests []media.ComposeRequest
	failAt   int
}

func (s *stubComposer) Compose(_ context.Context, req media.ComposeRequest) (media.ComposeResult, error) {
	s.requests = append(s.requests, req)
	if s.failAt > 0 && len(s.requests) == s.failAt {
		return media.ComposeResult{}, fmt.Errorf("%w: encoder exploded", domain.ErrComposition)
	}
	for _, p := range []string{req.AudioPath, req.VideoPath} {
		if _, err := os.Stat(p); err != nil {
			return media.ComposeResult{}, fmt.Errorf("missing input %s", p)
		}
	}
	if err := os.WriteFile(req.OutputPath, []byte("segment:"+req.Caption+"\n"), 0o644); err != nil {
		return media.ComposeResult{}, err
	}
	return media.ComposeResult{AudioDuration: 4, FinalDuration: media.FinalDuration(4)}, nil
}

type stubConcat struct {
	calls int
}

func (s *stubConcat) Concat(_ context.Context, segments []string, output string) error {
	s.calls++
	var sb strings.Builder
	for _, seg := range segments {
		raw, err := os.ReadFile(seg)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrConcatenation, err)
		}
		sb.Write(raw)
	}
	return os.WriteFile(output, []byte(sb.String()), 0o644)
}

type stubProjects map[string]domain.Project

func (s stubProjects) Get(_ context.Context, id string) (*domain.Project, error) {
	p, ok := s[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

type stubCredentials struct {
	creds domain.GenerationCredentials
	err   error
}

func (s stubCredentials) Load(context.Context) (domain.GenerationCredentials, error) {
	return s.creds, s.err
}

type dayFunc func(ctx context.Context, in DayInput) (domain.DayResult, error)

func (f dayFunc) Run(ctx context.Context, in DayInput) (domain.DayResult, error) {
	return f(ctx, in)
}

var errDayFailed = errors.New("synthetic day failure")

func fullCredentials() domain.GenerationCredentials {
	return domain.GenerationCredentials{
		ContentKey: "sk-openai",
		SafetyKey:  "gemini-key",
		VoiceKey:   "eleven-key",
		FootageKey: "pexels-key",
	}
}

func sampleAd() domain.AdContent {
	return domain.AdContent{
		Theme: "steady growth",
		Segments: []domain.AdSegment{
			{Text: "Most plans fail before they start.", VisualKeywords: "city sunrise", EstimatedDurationSeconds: 5},
			{Text: "A calm routine keeps you on track every single week.", VisualKeywords: "", EstimatedDurationSeconds: 7},
			{Text: "Begin today with one small step.", VisualKeywords: "open road", EstimatedDurationSeconds: 4},
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
