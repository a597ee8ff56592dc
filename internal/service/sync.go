package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"record_syncer/internal/domain"
	"record_syncer/internal/report"
)

type SyncService struct {
	source Source
	sink   Sink
	run    domain.RunContext
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewSyncService(
	source Source,
	sink Sink,
	run domain.RunContext,
	clock clockwork.Clock,
	logger *slog.Logger,
) *SyncService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SyncService{
		source: source,
		sink:   sink,
		run:    run,
		clock:  clock,
		logger: logger,
	}
}

// Sync fetches the full record set from the source and reconciles it into
// the sink. A fetch failure aborts before any write; reconciliation
// failures are tallied per record instead.
func (s *SyncService) Sync(ctx context.Context, limit int) (*domain.SyncOutcome, error) {
	startTime := s.clock.Now()
	s.logger.Info("starting sync", "base_url", s.run.BaseURL, "limit", limit)

	records, err := s.source.FetchAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	s.logger.Info("fetched source records", "count", len(records))

	outcome := s.reconcile(ctx, records)
	outcome.Fetched = len(records)
	outcome.Duration = s.clock.Since(startTime)

	s.logger.Info("sync completed",
		"fetched", outcome.Fetched,
		"created", outcome.Created,
		"updated", outcome.Updated,
		"failed", outcome.Failed,
		"duration", outcome.Duration,
	)

	return outcome, nil
}

// reconcile upserts records one at a time in fetch order, each exactly
// once. A record that spends its retry budget only bumps the failed tally:
// reconciliation is idempotent and safe to re-run, so one bad record must
// not take down the rest of the run.
func (s *SyncService) reconcile(ctx context.Context, records []domain.Record) *domain.SyncOutcome {
	outcome := &domain.SyncOutcome{}

	for _, record := range records {
		status, err := s.sink.Upsert(ctx, record)
		if err != nil {
			outcome.Failed++
			s.logger.Error("upsert failed",
				"external_id", record.ExternalID,
				"error", err,
			)
			continue
		}

		switch status {
		case domain.StatusCreated:
			outcome.Created++
		default:
			outcome.Updated++
		}
	}

	return outcome
}

// DryRun fetches records and builds the report artifact without touching
// the sink; a dry run performs zero writes.
func (s *SyncService) DryRun(ctx context.Context, limit int) (*report.Report, error) {
	s.logger.Info("starting dry run", "base_url", s.run.BaseURL, "limit", limit)

	records, err := s.source.FetchAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	s.logger.Info("fetched source records", "count", len(records))

	return report.Build(s.run, records, s.clock.Now()), nil
}
