package leaderboard

import (
	"context"
	"fmt"

	"github.com/okian/podium/internal/domain/types"
)

// Option applies a configuration option to a computation.
type Option func(*options)

type options struct {
	runner Runner
}

// WithRunner sets the runner used for per-partition ranking.
func WithRunner(r Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// Compute builds the full leaderboard for one competition snapshot. It never
// returns a partial response: any failure, including cancellation of ctx,
// yields a *ComputationError and a nil response.
func Compute(ctx context.Context, in Input, opts ...Option) (resp *types.LeaderboardResponse, err error) {
	o := options{runner: Sequential{}}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fail("compute", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, fail("compute", err)
	}

	f, err := normalize(in)
	if err != nil {
		return nil, err
	}
	if len(f.events) == 0 || len(f.athletes) == 0 {
		return types.Empty(in.Competition.ID, in.Competition.Name), nil
	}

	if err := f.aggregate(ctx, in, o.runner); err != nil {
		return nil, err
	}

	divisions := f.buildDivisions()
	gyms := f.buildGyms()
	if err := ctx.Err(); err != nil {
		return nil, fail("compute", err)
	}

	return &types.LeaderboardResponse{
		Competition: types.CompetitionInfo{ID: in.Competition.ID, Name: in.Competition.Name},
		Divisions:   divisions,
		Gyms:        gyms,
	}, nil
}
