package leaderboard

import (
	"context"

	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
)

// Runner executes n independent tasks and returns the first error.
// Implementations may run tasks concurrently; each task writes only to its
// own slot, so no ordering between tasks is required.
type Runner interface {
	Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error
}

// Sequential runs tasks one after another on the calling goroutine.
type Sequential struct{}

// Run implements Runner.
func (Sequential) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// partition holds the score entries of one (event, division) pair.
type partition struct {
	event    int
	division int
	entries  []scoring.Entry
}

// partitions builds the event -> division -> entries index. Partitions come
// out ordered by event then division so merging is deterministic. Scores for
// unknown events or athletes are ignored and only the first score of an
// athlete in an event counts.
func (f *field) partitions(in Input) []partition {
	slot := make([][]int, len(f.events))
	for e := range slot {
		slot[e] = make([]int, len(f.divisions))
		for d := range slot[e] {
			slot[e][d] = -1
		}
	}

	seen := make(map[[2]int]struct{}, len(in.Scores))
	var parts []partition
	for _, s := range in.Scores {
		e, ok := f.eventIndex[s.EventID]
		if !ok {
			continue
		}
		a, ok := f.userIndex[s.UserID]
		if !ok {
			continue
		}
		key := [2]int{e, a}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		d := f.athletes[a].division
		p := slot[e][d]
		if p < 0 {
			p = len(parts)
			slot[e][d] = p
			parts = append(parts, partition{event: e, division: d})
		}
		parts[p].entries = append(parts[p].entries, scoring.Entry{
			Ref:     a,
			Value:   s.NumericValue(),
			SortKey: s.Key(),
			Status:  s.Status,
		})
	}

	ordered := make([]partition, 0, len(parts))
	for e := range slot {
		for d := range slot[e] {
			if p := slot[e][d]; p >= 0 {
				ordered = append(ordered, parts[p])
			}
		}
	}
	return ordered
}

// aggregate ranks every partition through the runner, then folds the results
// into per-athlete event lists. Every athlete ends up with exactly one result
// per event; unscored events keep a zero placeholder.
func (f *field) aggregate(ctx context.Context, in Input, runner Runner) error {
	parts := f.partitions(in)
	ranked := make([][]scoring.Ranked, len(parts))

	err := runner.Run(ctx, len(parts), func(_ context.Context, i int) error {
		p := parts[i]
		ranked[i] = scoring.Assign(p.entries, f.events[p.event].Weight())
		return nil
	})
	if err != nil {
		return fail("rank", err)
	}
	if err := ctx.Err(); err != nil {
		return fail("rank", err)
	}

	for a := range f.athletes {
		results := make([]types.EventResult, len(f.events))
		for e, ev := range f.events {
			results[e] = types.EventResult{EventID: ev.ID, EventName: ev.Name}
		}
		f.athletes[a].results = results
	}

	for i, p := range parts {
		for _, r := range ranked[i] {
			if r.Ref < 0 || r.Ref >= len(f.athletes) {
				return failf("merge", "ranked entry references unknown athlete %d", r.Ref)
			}
			athlete := &f.athletes[r.Ref]
			if athlete.division != p.division {
				return failf("merge", "athlete %q ranked outside its division", athlete.UserID)
			}
			athlete.results[p.event].Points = r.Points
			athlete.results[p.event].Rank = r.Rank
			athlete.total += r.Points
		}
	}
	return nil
}
