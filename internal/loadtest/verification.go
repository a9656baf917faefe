package loadtest

import (
	"errors"
	"fmt"

	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/types"
)

// ErrVerification is wrapped by every invariant violation Verify reports.
var ErrVerification = errors.New("leaderboard verification failed")

// Verify checks the structural invariants of a computed leaderboard and
// returns every violation it finds joined into one error.
func Verify(resp *types.LeaderboardResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: nil response", ErrVerification)
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrVerification}, args...)...))
	}

	events := -1
	for _, div := range resp.Divisions {
		for i, a := range div.Athletes {
			if events < 0 {
				events = len(a.Events)
			}
			if len(a.Events) != events {
				fail("division %s athlete %s has %d events, want %d", div.ID, a.UserID, len(a.Events), events)
			}
			sum := 0
			for _, ev := range a.Events {
				if ev.Points < 0 {
					fail("athlete %s event %s has negative points", a.UserID, ev.EventID)
				}
				sum += ev.Points
			}
			if sum != a.TotalPoints {
				fail("athlete %s total %d, sum of events %d", a.UserID, a.TotalPoints, sum)
			}
			if i == 0 {
				if a.Rank != 1 {
					fail("division %s leader has rank %d", div.ID, a.Rank)
				}
				continue
			}
			prev := div.Athletes[i-1]
			switch {
			case prev.TotalPoints < a.TotalPoints:
				fail("division %s not ordered at position %d", div.ID, i+1)
			case prev.TotalPoints == a.TotalPoints && prev.Rank != a.Rank:
				fail("division %s tie at position %d ranked %d and %d", div.ID, i+1, prev.Rank, a.Rank)
			case prev.TotalPoints > a.TotalPoints && a.Rank != i+1:
				fail("division %s position %d has rank %d", div.ID, i+1, a.Rank)
			}
		}
	}

	for i, g := range resp.Gyms {
		verifyGym(g, fail)
		if i == 0 {
			if g.Rank != 1 {
				fail("top gym %q has rank %d", g.Name, g.Rank)
			}
			continue
		}
		prev := resp.Gyms[i-1]
		switch {
		case prev.TotalScore < g.TotalScore:
			fail("gyms not ordered at position %d", i+1)
		case prev.TotalScore == g.TotalScore && prev.Rank != g.Rank:
			fail("gym tie at position %d ranked %d and %d", i+1, prev.Rank, g.Rank)
		case prev.TotalScore > g.TotalScore && g.Rank != i+1:
			fail("gym %q at position %d has rank %d", g.Name, i+1, g.Rank)
		}
	}

	return errors.Join(errs...)
}

// verifyGym checks a team's totals and that only the best athletes of each
// event and division contribute.
func verifyGym(g types.GymLeaderboard, fail func(string, ...any)) {
	if g.AthleteCount != len(g.Athletes) {
		fail("gym %q reports %d athletes, lists %d", g.Name, g.AthleteCount, len(g.Athletes))
	}

	type slot struct {
		event    int
		division string
	}
	counts := make(map[slot]int)
	lowestIn := make(map[slot]int)
	highestOut := make(map[slot]int)

	total := 0
	for _, a := range g.Athletes {
		contributing := 0
		for e, ev := range a.Events {
			k := slot{event: e, division: a.Division}
			if !ev.Contributing {
				if best, ok := highestOut[k]; !ok || ev.Points > best {
					highestOut[k] = ev.Points
				}
				continue
			}
			contributing += ev.Points
			counts[k]++
			if low, ok := lowestIn[k]; !ok || ev.Points < low {
				lowestIn[k] = ev.Points
			}
		}
		if contributing != a.ContributingTotal {
			fail("gym %q athlete %q contributing total %d, sum %d", g.Name, a.Name, a.ContributingTotal, contributing)
		}
		total += a.ContributingTotal
	}
	if total != g.TotalScore {
		fail("gym %q total %d, sum of contributions %d", g.Name, g.TotalScore, total)
	}

	for k, n := range counts {
		if n > leaderboard.GymContributors {
			fail("gym %q has %d contributors in event %d division %q", g.Name, n, k.event+1, k.division)
		}
		if out, ok := highestOut[k]; ok && out > lowestIn[k] {
			fail("gym %q event %d division %q skips a better result", g.Name, k.event+1, k.division)
		}
	}
}
