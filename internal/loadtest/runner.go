package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

const (
	percentile95         = 0.95
	percentageMultiplier = 100
)

// ErrMismatch reports a response that differs from the expected leaderboard.
var ErrMismatch = errors.New("leaderboard mismatch")

// Run requests the leaderboard concurrently, verifies every response and
// checks that all responses agree. When FixturePath is set the leaderboard
// is also computed locally from the fixture and compared.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("loadtest")

	log.Info(ctx, "starting leaderboard load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("competition", cfg.CompetitionID),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	var expected []byte
	if cfg.FixturePath != "" {
		var err error
		if expected, err = expectedLeaderboard(ctx, cfg.FixturePath, cfg.CompetitionID); err != nil {
			return stats, fmt.Errorf("local computation failed: %w", err)
		}
	}

	var (
		mu        sync.Mutex
		latencies []time.Duration
		first     []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i := 0; i < cfg.Requests; i++ {
		g.Go(func() error {
			start := time.Now()
			resp, err := client.Leaderboard(gctx, cfg.CompetitionID)
			took := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			stats.Requests++
			if err != nil {
				stats.Failed++
				log.Warn(gctx, "request failed", logger.Int("request", i), logger.Error(err))
				return nil
			}
			stats.Successful++
			latencies = append(latencies, took)
			if cfg.Verbose {
				log.Debug(gctx, "request done", logger.Int("request", i), logger.Duration("took", took))
			}

			got, err := json.Marshal(resp)
			if err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
			if first == nil {
				first = got
				stats.Athletes = countAthletes(resp)
				stats.Gyms = len(resp.Gyms)
				return Verify(resp)
			}
			if !bytes.Equal(first, got) {
				stats.Mismatched++
			}
			return nil
		})
	}
	err := g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	summarize(stats, latencies)
	logStats(ctx, stats)

	if err != nil {
		return stats, err
	}
	if stats.Successful == 0 && cfg.Requests > 0 {
		return stats, errors.New("no request succeeded")
	}
	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d responses differ from the first", ErrMismatch, stats.Mismatched)
	}
	if expected != nil && !bytes.Equal(expected, first) {
		return stats, fmt.Errorf("%w: service response differs from local computation", ErrMismatch)
	}
	log.Info(ctx, "load test completed successfully")
	return stats, nil
}

// expectedLeaderboard computes the leaderboard from a fixture in process.
func expectedLeaderboard(ctx context.Context, path, idOrSlug string) ([]byte, error) {
	store, err := repository.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	svc := service.New(store, service.WithLogger(logger.Named("loadtest.local")))
	defer svc.Close()

	resp, err := svc.ComputeLeaderboard(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

func countAthletes(resp *types.LeaderboardResponse) int {
	n := 0
	for _, d := range resp.Divisions {
		n += len(d.Athletes)
	}
	return n
}

func summarize(stats *Stats, latencies []time.Duration) {
	if len(latencies) == 0 {
		return
	}
	slices.Sort(latencies)
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	stats.Min = latencies[0]
	stats.Max = latencies[len(latencies)-1]
	stats.Mean = sum / time.Duration(len(latencies))
	stats.P95 = latencies[int(float64(len(latencies)-1)*percentile95)]
}

func logStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64
	if stats.Requests > 0 {
		successRate = float64(stats.Successful) / float64(stats.Requests) * percentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("requests", stats.Requests),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("athletes", stats.Athletes),
		logger.Int("gyms", stats.Gyms),
		logger.Duration("min", stats.Min),
		logger.Duration("mean", stats.Mean),
		logger.Duration("p95", stats.P95),
		logger.Duration("max", stats.Max),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond),
	)
}
