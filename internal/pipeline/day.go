package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/media"
	"adstudio/internal/providers/content"
	"adstudio/internal/storage"
)

// DefaultFootageQuery is searched when a segment carries no visual keywords.
const DefaultFootageQuery = "abstract bright business background"

const textPreviewLength = 20

type dayState string

const (
	stateDuplicateCheck    dayState = "duplicate_check"
	stateContentGeneration dayState = "content_generation"
	stateSegmentLoop       dayState = "segment_loop"
	stateConcatenation     dayState = "concatenation"
	stateCleanup           dayState = "cleanup"
	stateErrorCleanup      dayState = "error_cleanup"
	stateDone              dayState = "done"
)

// DayInput is everything one day's generation needs.
type DayInput struct {
	Project     domain.Project
	Date        time.Time
	IsTest      bool
	Credentials domain.GenerationCredentials
	// Log receives human readable progress lines.
	Log func(message string)
}

type DayOptions struct {
	Content    ContentGenerator
	Auditor    Auditor
	Voice      Synthesizer
	Footage    FootageResolver
	Downloader Downloader
	Composer   Composer
	Concat     Concatenator
	Store      *storage.ArtifactStore
	Logger     *infra.Logger
	Now        func() time.Time
}

// DayOrchestrator runs the stage chain for one calendar day. Segments and the
// stages within a segment run strictly in order.
type DayOrchestrator struct {
	content    ContentGenerator
	auditor    Auditor
	voice      Synthesizer
	footage    FootageResolver
	downloader Downloader
	composer   Composer
	concat     Concatenator
	store      *storage.ArtifactStore
	logger     *infra.Logger
	now        func() time.Time
}

func NewDayOrchestrator(opts DayOptions) (*DayOrchestrator, error) {
	switch {
	case opts.Content == nil:
		return nil, errors.New("pipeline: content generator is required")
	case opts.Auditor == nil:
		return nil, errors.New("pipeline: auditor is required")
	case opts.Voice == nil:
		return nil, errors.New("pipeline: synthesizer is required")
	case opts.Footage == nil:
		return nil, errors.New("pipeline: footage resolver is required")
	case opts.Downloader == nil:
		return nil, errors.New("pipeline: downloader is required")
	case opts.Composer == nil:
		return nil, errors.New("pipeline: composer is required")
	case opts.Concat == nil:
		return nil, errors.New("pipeline: concatenator is required")
	case opts.Store == nil:
		return nil, errors.New("pipeline: artifact store is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &DayOrchestrator{
		content:    opts.Content,
		auditor:    opts.Auditor,
		voice:      opts.Voice,
		footage:    opts.Footage,
		downloader: opts.Downloader,
		composer:   opts.Composer,
		concat:     opts.Concat,
		store:      opts.Store,
		logger:     infra.OrNop(opts.Logger),
		now:        now,
	}, nil
}

// Run generates the ad for in.Date. A live day whose artifact already exists
// is skipped. Whatever happens, the temporary workspace is gone on return.
func (d *DayOrchestrator) Run(ctx context.Context, in DayInput) (res domain.DayResult, err error) {
	log := in.Log
	if log == nil {
		log = func(string) {}
	}
	logger := d.logger.With().
		Str("project_id", in.Project.ID).
		Str("date", in.Date.Format(time.DateOnly)).
		Bool("test", in.IsTest).
		Logger()
	state := stateDuplicateCheck
	enter := func(next dayState) {
		state = next
		logger.Debug().Str("state", string(state)).Msg("pipeline: day state")
	}

	paths, err := d.store.DayPaths(in.Project.Name, in.Date, in.IsTest)
	if err != nil {
		return domain.DayResult{}, err
	}
	job := domain.DayJob{Date: in.Date, IsTest: in.IsTest, TargetPath: paths.TargetPath}

	enter(stateDuplicateCheck)
	if !in.IsTest && d.store.Exists(job.TargetPath) {
		enter(stateDone)
		return domain.DayResult{
			Status:  domain.DayStatusSkipped,
			Message: fmt.Sprintf("Skipped day %02d already exists", in.Date.Day()),
		}, nil
	}

	job.TempWorkspacePath, err = d.store.NewWorkspace(paths, in.Date, d.now())
	if err != nil {
		return domain.DayResult{}, err
	}
	defer func() {
		if err == nil {
			return
		}
		failed := state
		enter(stateErrorCleanup)
		if rmErr := d.store.RemoveWorkspace(job.TempWorkspacePath); rmErr != nil {
			logger.Warn().Err(rmErr).Str("workspace", job.TempWorkspacePath).Msg("pipeline: workspace cleanup failed")
		}
		logger.Error().Err(err).Str("failed_state", string(failed)).Msg("pipeline: day failed")
	}()

	dateContext := content.DateContext(in.Date)
	log("Starting generation for date: " + dateContext)

	enter(stateContentGeneration)
	log("Generating story segments...")
	ad, err := d.content.Generate(ctx, content.GenerateRequest{
		MasterPrompt: in.Project.MasterPrompt,
		DateContext:  dateContext,
		APIKey:       in.Credentials.ContentKey,
		OnAttemptFailed: func(attempt, maxAttempts int, err error) {
			log(fmt.Sprintf("Content attempt %d/%d failed: %v", attempt, maxAttempts, err))
		},
	})
	if err != nil {
		return domain.DayResult{}, err
	}
	log(fmt.Sprintf("Script ready: %s", ad.Theme))

	enter(stateSegmentLoop)
	artifacts := make([]domain.SegmentArtifact, 0, len(ad.Segments))
	for i, seg := range ad.Segments {
		artifact, err := d.processSegment(ctx, job, i, seg, in.Credentials, log)
		if err != nil {
			return domain.DayResult{}, fmt.Errorf("segment %d: %w", i, err)
		}
		artifacts = append(artifacts, artifact)
	}

	enter(stateConcatenation)
	log("Concatenating segments...")
	inputs := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		inputs = append(inputs, a.Path)
	}
	staged := filepath.Join(job.TempWorkspacePath, paths.FileName)
	if err := d.concat.Concat(ctx, inputs, staged); err != nil {
		return domain.DayResult{}, err
	}
	if err := d.store.Promote(staged, job.TargetPath); err != nil {
		return domain.DayResult{}, err
	}

	enter(stateCleanup)
	for _, a := range artifacts {
		_ = os.Remove(a.Path)
	}
	if rmErr := d.store.RemoveWorkspace(job.TempWorkspacePath); rmErr != nil {
		logger.Warn().Err(rmErr).Str("workspace", job.TempWorkspacePath).Msg("pipeline: workspace cleanup failed")
	}
	enter(stateDone)
	logger.Info().Str("file", job.TargetPath).Msg("pipeline: day generated")
	return domain.DayResult{Status: domain.DayStatusSuccess, File: paths.FileName}, nil
}

func (d *DayOrchestrator) processSegment(ctx context.Context, job domain.DayJob, i int, seg domain.AdSegment, creds domain.GenerationCredentials, log func(string)) (domain.SegmentArtifact, error) {
	prefix := filepath.Join(job.TempWorkspacePath, fmt.Sprintf("seg_%d", i))

	if strings.TrimSpace(creds.SafetyKey) != "" {
		log(fmt.Sprintf("Auditing segment %d...", i))
	}
	if audit := d.auditor.Audit(ctx, seg.Text, creds.SafetyKey); audit.WasModified {
		seg = seg.WithText(audit.SafeScript)
		log(fmt.Sprintf("Safety audit: segment %d rewritten.", i))
	}

	log(fmt.Sprintf("Generating audio for segment %d (text: %q)", i, preview(seg.Text)))
	audio, err := d.voice.Synthesize(ctx, seg.Text, creds.VoiceKey)
	if err != nil {
		return domain.SegmentArtifact{}, err
	}
	audioPath := prefix + "_audio.mp3"
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return domain.SegmentArtifact{}, fmt.Errorf("write narration: %w", err)
	}
	log(fmt.Sprintf("Audio generated for segment %d", i))

	query := strings.TrimSpace(seg.VisualKeywords)
	if query == "" {
		query = DefaultFootageQuery
	}
	log(fmt.Sprintf("Searching footage for: %q", query))
	link, err := d.footage.Resolve(ctx, query, creds.FootageKey)
	if err != nil {
		return domain.SegmentArtifact{}, err
	}

	log(fmt.Sprintf("Downloading video for segment %d...", i))
	videoPath := prefix + "_video.mp4"
	if err := d.downloader.Download(ctx, link, videoPath); err != nil {
		log(fmt.Sprintf("Video download failed for segment %d", i))
		return domain.SegmentArtifact{}, err
	}

	log(fmt.Sprintf("Composing segment %d (looping video to audio with captions)...", i))
	output := prefix + "_final.mp4"
	result, err := d.composer.Compose(ctx, media.ComposeRequest{
		VideoPath:          videoPath,
		AudioPath:          audioPath,
		OutputPath:         output,
		UseHardwareEncoder: creds.UseHardwareEncoder,
		Caption:            seg.Text,
	})
	if err != nil {
		return domain.SegmentArtifact{}, err
	}
	log(fmt.Sprintf("Segment %d composed (%.2fs).", i, result.FinalDuration))

	_ = os.Remove(audioPath)
	_ = os.Remove(videoPath)
	return domain.SegmentArtifact{Index: i, Path: output}, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= textPreviewLength {
		return text
	}
	return string(runes[:textPreviewLength]) + "..."
}
