// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/worker"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

const defaultComputeTimeout = 10 * time.Second

// Service loads competition snapshots and computes their leaderboards.
type Service struct {
	store   repository.Store
	runner  leaderboard.Runner
	timeout time.Duration
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunner sets the runner used to rank partitions.
func WithRunner(r leaderboard.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithWorkerCount ranks partitions on a worker pool of the given size.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.runner = worker.NewPool(count)
		}
	}
}

// WithComputeTimeout bounds a single computation, data loading included.
func WithComputeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New constructs a Service reading from store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		runner:  leaderboard.Sequential{},
		timeout: defaultComputeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// ComputeLeaderboard resolves a competition by id or slug and computes its
// leaderboard. Errors match ErrCompetitionNotFound or ErrComputation. A
// competition without a track, published events or registrations yields an
// empty leaderboard.
func (s *Service) ComputeLeaderboard(ctx context.Context, idOrSlug string) (*types.LeaderboardResponse, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, in, err := s.compute(ctx, idOrSlug)
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000

	switch {
	case errors.Is(err, ErrCompetitionNotFound):
		metrics.RecordComputation(metrics.OutcomeNotFound, ms)
		s.logger.Debug(ctx, "competition not found", logger.String("competition", idOrSlug))
		return nil, err
	case err != nil:
		metrics.RecordComputation(metrics.OutcomeError, ms)
		metrics.RecordErrorByComponent("service", "computation")
		s.logger.Error(ctx, "leaderboard computation failed",
			logger.String("competition", idOrSlug),
			logger.Duration("took", elapsed),
			logger.Error(err),
		)
		return nil, err
	}

	athletes := 0
	for _, d := range resp.Divisions {
		athletes += len(d.Athletes)
	}
	outcome := metrics.OutcomeSuccess
	if athletes == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordComputation(outcome, ms)
	metrics.RecordLeaderboardSize(len(in.Events), len(resp.Divisions), athletes, len(resp.Gyms))

	s.logger.Info(ctx, "leaderboard computed",
		logger.String("competition", resp.Competition.ID),
		logger.Int("events", len(in.Events)),
		logger.Int("registrations", len(in.Registrations)),
		logger.Int("scores", len(in.Scores)),
		logger.Int("divisions", len(resp.Divisions)),
		logger.Int("gyms", len(resp.Gyms)),
		logger.Duration("took", elapsed),
	)
	return resp, nil
}

func (s *Service) compute(ctx context.Context, idOrSlug string) (*types.LeaderboardResponse, leaderboard.Input, error) {
	in, ok, err := s.load(ctx, idOrSlug)
	if err != nil {
		return nil, in, err
	}
	if !ok {
		return types.Empty(in.Competition.ID, in.Competition.Name), in, nil
	}

	resp, err := leaderboard.Compute(ctx, in, leaderboard.WithRunner(s.runner))
	if err != nil {
		return nil, in, err
	}
	return resp, in, nil
}

// load fetches one competition snapshot. ok is false when the competition
// exists but has nothing to rank.
func (s *Service) load(ctx context.Context, idOrSlug string) (in leaderboard.Input, ok bool, err error) {
	competition, err := s.store.FindCompetition(ctx, idOrSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return in, false, fmt.Errorf("%w: %q", ErrCompetitionNotFound, idOrSlug)
	}
	if err != nil {
		return in, false, loadError("competition", err)
	}
	in.Competition = competition

	track, err := s.store.FindTrack(ctx, competition.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return in, false, nil
	}
	if err != nil {
		return in, false, loadError("track", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.store.ListPublishedEvents(gctx, track.ID)
		if err != nil {
			return loadError("events", err)
		}
		in.Events = events
		return nil
	})
	g.Go(func() error {
		regs, err := s.store.ListRegistrations(gctx, competition.ID)
		if err != nil {
			return loadError("registrations", err)
		}
		in.Registrations = regs
		return nil
	})
	if err := g.Wait(); err != nil {
		return in, false, err
	}
	if len(in.Events) == 0 || len(in.Registrations) == 0 {
		return in, false, nil
	}

	eventIDs := make([]string, len(in.Events))
	for i, e := range in.Events {
		eventIDs[i] = e.ID
	}
	scores, err := s.store.ListScores(ctx, eventIDs)
	if err != nil {
		return in, false, loadError("scores", err)
	}
	in.Scores = scores
	return in, true, nil
}

// Ready reports whether the backing store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close releases the backing store.
func (s *Service) Close() {
	s.store.Close()
}
