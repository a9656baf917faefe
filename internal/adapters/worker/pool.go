// Package worker runs leaderboard ranking tasks on a bounded goroutine pool.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Pool fans ranking tasks out over at most size goroutines. It satisfies
// leaderboard.Runner. A Pool holds no goroutines between runs and is safe for
// concurrent use.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool bounded to size concurrent tasks. A size below one
// falls back to runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size: size,
		name: "worker-pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Run executes task for every i in [0, n). The first failing task cancels
// the context handed to the others and its error is returned. A panicking
// task is reported as an error instead of crashing the process.
func (p *Pool) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return p.runTask(gctx, i, task)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Pool) runTask(ctx context.Context, i int, task func(ctx context.Context, i int) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	metrics.WorkerStarted()
	defer func() {
		metrics.WorkerFinished()
		metrics.RecordPartitionLatency(float64(time.Since(start).Microseconds()) / 1000)

		if r := recover(); r != nil {
			metrics.RecordWorkerPanic()
			metrics.RecordErrorByComponent("worker", "panic")
			p.logger.Error(ctx, "ranking task panicked",
				logger.Int("task", i),
				logger.Any("panic", r),
			)
			err = fmt.Errorf("%w: task %d: %v", ErrTaskPanic, i, r)
		}
	}()

	if err := task(ctx, i); err != nil {
		p.logger.Debug(ctx, "ranking task failed", logger.Int("task", i), logger.Error(err))
		return err
	}
	return nil
}
