package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"record_syncer/internal/domain"
	"record_syncer/internal/mockapi"
	"record_syncer/internal/retry"
	"record_syncer/internal/sink"
	"record_syncer/internal/source/records"
)

// EndToEndSuite runs the full pipeline against the in-memory fixture over
// real HTTP: 25 seeded records, page 2 failing once, and the sink
// rate-limiting every 5th write.
type EndToEndSuite struct {
	suite.Suite
	api    *mockapi.Server
	ts     *httptest.Server
	logger *slog.Logger
}

func (s *EndToEndSuite) SetupTest() {
	s.api = mockapi.New(mockapi.Config{
		SeedCount:      25,
		FailPage:       2,
		RateLimitEvery: 5,
		RetryAfter:     "0",
	})
	s.ts = httptest.NewServer(s.api.Handler())
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func (s *EndToEndSuite) TearDownTest() {
	s.ts.Close()
}

func TestEndToEndSuite(t *testing.T) {
	suite.Run(t, new(EndToEndSuite))
}

func (s *EndToEndSuite) newService() *SyncService {
	policy := retry.Policy{MaxAttempts: 6, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	exec := retry.New(retry.Config{Client: &http.Client{Timeout: 5 * time.Second}}, s.logger)

	source := records.New(records.Config{
		BaseURL:  s.ts.URL,
		PageSize: 10,
		Policy:   policy,
	}, exec, s.logger)

	sinkClient := sink.New(sink.Config{
		BaseURL: s.ts.URL,
		Policy:  policy,
	}, exec, nil, s.logger)

	run := domain.RunContext{RunID: "e2e-test", BaseURL: s.ts.URL}
	return NewSyncService(source, sinkClient, run, nil, s.logger)
}

func (s *EndToEndSuite) TestFirstRunCreatesEverything() {
	outcome, err := s.newService().Sync(context.Background(), 0)

	s.Require().NoError(err)
	s.Equal(25, outcome.Fetched)
	s.Equal(25, outcome.Created)
	s.Equal(0, outcome.Updated)
	s.Equal(0, outcome.Failed)
	s.Equal(25, s.api.SinkCount())
}

func (s *EndToEndSuite) TestSecondRunIsIdempotent() {
	ctx := context.Background()
	svc := s.newService()

	_, err := svc.Sync(ctx, 0)
	s.Require().NoError(err)
	s.Require().Equal(25, s.api.SinkCount())

	outcome, err := svc.Sync(ctx, 0)
	s.Require().NoError(err)

	s.Equal(25, s.api.SinkCount(), "re-running must not grow the sink")
	s.Equal(0, outcome.Created)
	s.Equal(25, outcome.Updated)
	s.Equal(0, outcome.Failed)
}

func (s *EndToEndSuite) TestLimitBoundsWrites() {
	outcome, err := s.newService().Sync(context.Background(), 5)

	s.Require().NoError(err)
	s.Equal(5, outcome.Fetched)
	s.Equal(5, s.api.SinkCount())
	s.Equal(5, outcome.Created+outcome.Updated+outcome.Failed)
}

func (s *EndToEndSuite) TestDryRunPerformsZeroWrites() {
	rep, err := s.newService().DryRun(context.Background(), 0)

	s.Require().NoError(err)
	s.Equal(0, s.api.SinkCount(), "dry run must not write")
	s.Equal(25, rep.Count)
	s.Require().Len(rep.ExternalIDs, 20)
	for i, id := range rep.ExternalIDs {
		s.Equal(fmt.Sprintf("item-%d", i+1), id)
	}
}
