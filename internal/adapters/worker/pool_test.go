package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/podium/internal/adapters/worker"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/model"
	logging "github.com/okian/podium/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

var _ leaderboard.Runner = (*worker.Pool)(nil)

func init() {
	_ = logging.Init()
}

func TestPoolRun(t *testing.T) {
	convey.Convey("Given a pool of two workers", t, func() {
		pool := worker.NewPool(2, worker.WithName("test-pool"))
		ctx := context.Background()

		convey.Convey("When running independent tasks", func() {
			out := make([]int, 50)
			err := pool.Run(ctx, len(out), func(_ context.Context, i int) error {
				out[i] = i * i
				return nil
			})

			convey.Convey("Then every slot should be written", func() {
				convey.So(err, convey.ShouldBeNil)
				for i, v := range out {
					convey.So(v, convey.ShouldEqual, i*i)
				}
			})
		})

		convey.Convey("When tasks run concurrently", func() {
			var running, peak int32
			err := pool.Run(ctx, 20, func(_ context.Context, _ int) error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})

			convey.Convey("Then no more than the pool size should run at once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(atomic.LoadInt32(&peak), convey.ShouldBeLessThanOrEqualTo, 2)
			})
		})

		convey.Convey("When there is nothing to run", func() {
			called := false
			err := pool.Run(ctx, 0, func(context.Context, int) error {
				called = true
				return nil
			})

			convey.Convey("Then the task should never be called", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(called, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a task fails", func() {
			boom := errors.New("boom")
			err := pool.Run(ctx, 10, func(_ context.Context, i int) error {
				if i == 3 {
					return boom
				}
				return nil
			})

			convey.Convey("Then the error should be returned", func() {
				convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a task panics", func() {
			err := pool.Run(ctx, 4, func(_ context.Context, i int) error {
				if i == 1 {
					panic("bad partition")
				}
				return nil
			})

			convey.Convey("Then the panic should surface as an error", func() {
				convey.So(errors.Is(err, worker.ErrTaskPanic), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "bad partition")
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			var calls int32
			err := pool.Run(cctx, 10, func(context.Context, int) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})

			convey.Convey("Then no task should run and the cause should be returned", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				convey.So(atomic.LoadInt32(&calls), convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a non-positive size", t, func() {
		pool := worker.NewPool(0)

		convey.Convey("Then the pool should fall back to the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}

func TestPoolWithCompute(t *testing.T) {
	convey.Convey("Given the pool as a leaderboard runner", t, func() {
		pool := worker.NewPool(4)
		value := func(v float64) *float64 { return &v }

		in := leaderboard.Input{
			Competition: model.Competition{ID: "c1", Name: "Throwdown"},
			Events: []model.Event{
				{ID: "e1", Name: "Fran", TrackOrder: 1, Status: model.EventStatusPublished},
				{ID: "e2", Name: "Grace", TrackOrder: 2, Status: model.EventStatusPublished},
			},
			Registrations: []model.Registration{
				{ID: "r1", UserID: "u1", FirstName: "Ana", Status: "ACTIVE"},
				{ID: "r2", UserID: "u2", FirstName: "Ben", Status: "ACTIVE"},
			},
			Scores: []model.Score{
				{UserID: "u1", EventID: "e1", Value: value(180), Status: model.ScoreStatusScored},
				{UserID: "u2", EventID: "e1", Value: value(200), Status: model.ScoreStatusScored},
				{UserID: "u1", EventID: "e2", Value: value(150), Status: model.ScoreStatusScored},
				{UserID: "u2", EventID: "e2", Value: value(120), Status: model.ScoreStatusScored},
			},
		}

		convey.Convey("When computing the leaderboard", func() {
			resp, err := leaderboard.Compute(context.Background(), in, leaderboard.WithRunner(pool))

			convey.Convey("Then both partitions should be ranked", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.Divisions, convey.ShouldHaveLength, 1)
				athletes := resp.Divisions[0].Athletes
				convey.So(athletes, convey.ShouldHaveLength, 2)
				convey.So(athletes[0].TotalPoints, convey.ShouldEqual, 195)
				convey.So(athletes[1].TotalPoints, convey.ShouldEqual, 195)
				convey.So(athletes[0].Rank, convey.ShouldEqual, 1)
				convey.So(athletes[1].Rank, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When computing with a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			resp, err := leaderboard.Compute(ctx, in, leaderboard.WithRunner(pool))

			convey.Convey("Then it should fail without a response", func() {
				convey.So(resp, convey.ShouldBeNil)
				convey.So(errors.Is(err, leaderboard.ErrComputation), convey.ShouldBeTrue)
			})
		})
	})
}
