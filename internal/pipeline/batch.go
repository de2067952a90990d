package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

// BatchRunner runs one batch and reports progress through emit.
type BatchRunner interface {
	Run(ctx context.Context, req domain.BatchRequest, emit func(domain.ProgressEvent)) error
}

// ProjectGetter fetches a project by id.
type ProjectGetter interface {
	Get(ctx context.Context, id string) (*domain.Project, error)
}

type BatchOptions struct {
	Day         DayRunner
	Projects    ProjectGetter
	Credentials domain.CredentialSource
	Locker      Locker
	Logger      *infra.Logger
	Now         func() time.Time
}

// Batch iterates the days of a month and turns each day's outcome into a
// result event. One failed day never stops the batch.
type Batch struct {
	day         DayRunner
	projects    ProjectGetter
	credentials domain.CredentialSource
	locker      Locker
	logger      *infra.Logger
	now         func() time.Time
}

func NewBatch(opts BatchOptions) (*Batch, error) {
	switch {
	case opts.Day == nil:
		return nil, errors.New("pipeline: day runner is required")
	case opts.Projects == nil:
		return nil, errors.New("pipeline: project store is required")
	case opts.Credentials == nil:
		return nil, errors.New("pipeline: credential source is required")
	}
	locker := opts.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Batch{
		day:         opts.Day,
		projects:    opts.Projects,
		credentials: opts.Credentials,
		locker:      locker,
		logger:      infra.OrNop(opts.Logger),
		now:         now,
	}, nil
}

// Run executes req. The event sequence is zero or more log events, one result
// per day, then done; or a single error event when the batch cannot proceed.
// The returned error mirrors the error event.
func (b *Batch) Run(ctx context.Context, req domain.BatchRequest, emit func(domain.ProgressEvent)) error {
	logger := b.logger.With().
		Str("project_id", req.ProjectID).
		Int("year", req.Year).
		Int("month", req.Month).
		Bool("test", req.IsTest).
		Logger()
	log := func(message string) {
		emit(domain.LogEvent(message, b.now()))
	}
	fail := func(err error) error {
		logger.Error().Err(err).Msg("pipeline: batch aborted")
		emit(domain.ErrorEvent(err))
		return err
	}

	if strings.TrimSpace(req.ProjectID) == "" {
		return fail(fmt.Errorf("%w: projectId is required", domain.ErrInvalidRequest))
	}
	creds, err := b.credentials.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("load credentials: %w", err))
	}
	if err := creds.Validate(); err != nil {
		return fail(err)
	}
	project, err := b.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return fail(err)
	}
	days, err := DayRange(req.Year, time.Month(req.Month), req.IsTest, b.now())
	if err != nil {
		return fail(err)
	}
	release, err := b.locker.Acquire(ctx, project.ID)
	if err != nil {
		return fail(err)
	}
	defer release()

	logger.Info().Int("days", len(days)).Msg("pipeline: batch started")
	log(fmt.Sprintf("Processing %d day(s) for %s", len(days), project.Name))

	var generated, skipped, failed int
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		res, err := b.day.Run(ctx, DayInput{
			Project:     *project,
			Date:        day,
			IsTest:      req.IsTest,
			Credentials: creds,
			Log:         log,
		})
		if err != nil {
			failed++
			emit(domain.DayErrorEvent(day, err))
			continue
		}
		switch res.Status {
		case domain.DayStatusSkipped:
			skipped++
		default:
			generated++
		}
		emit(domain.ResultEvent(day, res))
	}

	logger.Info().
		Int("generated", generated).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("pipeline: batch finished")
	emit(domain.DoneEvent())
	return nil
}
