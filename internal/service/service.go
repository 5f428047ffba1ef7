// Package service orchestrates one batch run: fetch, reduce, persist.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"prtrack/internal/domain"
	"prtrack/internal/events"
	"prtrack/internal/membership"
	"prtrack/internal/turn"
	"prtrack/internal/workhours"
)

type EventSource interface {
	ListPullRequests(ctx context.Context) ([]domain.PullRequest, error)
	FetchEventStreams(ctx context.Context, number int) (domain.EventStreams, error)
}

type RecordStore interface {
	Load(ctx context.Context) ([]domain.Record, error)
	Save(ctx context.Context, records []domain.Record) error
	SetLastScrape(ctx context.Context, t time.Time) error
	LastScrape(ctx context.Context) (*time.Time, error)
}

type SideClassifier interface {
	Classify(ctx context.Context, login, author string) membership.Side
}

type Service struct {
	source EventSource
	store  RecordStore
	cls    SideClassifier
	hours  *workhours.Adjuster
	label  string
	log    *zap.SugaredLogger
}

func NewService(
	source EventSource,
	store RecordStore,
	cls SideClassifier,
	hours *workhours.Adjuster,
	label string,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		source: source,
		store:  store,
		cls:    cls,
		hours:  hours,
		label:  label,
		log:    log,
	}
}

// Accumulate refreshes the record set from the event source. PRs whose
// upstream updated_at matches the cached pr_updated_at are skipped;
// everything else is re-reduced and upserted.
func (s *Service) Accumulate(ctx context.Context) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	s.log.Infow("loaded existing PR records", "count", len(records))

	index := make(map[int]int, len(records))
	for i, rec := range records {
		index[rec.Number] = i
	}

	prs, err := s.source.ListPullRequests(ctx)
	if err != nil {
		return fmt.Errorf("list pull requests: %w", err)
	}

	processed := 0
	for _, pr := range prs {
		if i, ok := index[pr.Number]; ok && upToDate(records[i], pr) {
			s.log.Debugw("skipping cached PR", "number", pr.Number)
			continue
		}

		s.log.Infow("processing PR", "number", pr.Number)
		rec, err := s.processPR(ctx, pr)
		if err != nil {
			return fmt.Errorf("process PR #%d: %w", pr.Number, err)
		}

		if i, ok := index[pr.Number]; ok {
			records[i] = rec
		} else {
			index[pr.Number] = len(records)
			records = append(records, rec)
		}
		processed++

		if rec.LatencyHours != nil {
			s.log.Infow("review latency",
				"number", pr.Number,
				"hours", fmt.Sprintf("%.2f", *rec.LatencyHours),
			)
		}
	}

	if processed == 0 {
		s.log.Infow("no new PRs to add")
	} else if err := s.store.Save(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}

	if err := s.store.SetLastScrape(ctx, time.Now().UTC()); err != nil {
		return fmt.Errorf("record scrape time: %w", err)
	}

	s.log.Infow("accumulation finished", "processed", processed, "total", len(records))
	return nil
}

func (s *Service) processPR(ctx context.Context, pr domain.PullRequest) (domain.Record, error) {
	streams, err := s.source.FetchEventStreams(ctx, pr.Number)
	if err != nil {
		return domain.Record{}, err
	}

	seq := events.Merge(streams.Timeline, streams.Supplemental()...)
	ms := events.ExtractMilestones(seq, s.label)
	verdict := turn.Evaluate(ctx, seq, pr.Author, s.cls)

	closedAt := ms.ClosedAt
	if closedAt == nil {
		closedAt = pr.ClosedAt
	}

	return domain.Record{
		Number:                pr.Number,
		HeadRepo:              pr.HeadRepo,
		Author:                pr.Author,
		CreatedAt:             pr.CreatedAt,
		ReviewRequestedAt:     ms.ReviewRequestedAt,
		ReviewingInternallyAt: ms.ReviewingInternallyAt,
		ClosedAt:              closedAt,
		IsDraft:               pr.Draft,
		UpdatedAt:             pr.UpdatedAt,
		LastRelevantActor:     verdict.LastActor,
		LastRelevantAt:        verdict.LastAt,
		IsForeignTurn:         verdict.IsForeignTurn,
		LatencyHours:          s.hours.Latency(ms.ReviewRequestedAt, closedAt),
	}, nil
}

// RecomputeWIP clears the cached turn-analysis fields on open non-draft
// rows so the next Accumulate reprocesses them. Returns how many rows
// were cleared.
func (s *Service) RecomputeWIP(ctx context.Context) (int, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	cleared := 0
	for i := range records {
		if records[i].IsWIP() {
			records[i].ClearTurnCache()
			cleared++
		}
	}

	if cleared > 0 {
		if err := s.store.Save(ctx, records); err != nil {
			return 0, fmt.Errorf("save records: %w", err)
		}
	}

	s.log.Infow("cleared turn cache for WIP rows", "count", cleared)
	return cleared, nil
}

func upToDate(rec domain.Record, pr domain.PullRequest) bool {
	return rec.UpdatedAt != nil && pr.UpdatedAt != nil && rec.UpdatedAt.Equal(*pr.UpdatedAt)
}
