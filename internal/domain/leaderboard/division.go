package leaderboard

import (
	"cmp"
	"slices"

	"github.com/okian/podium/internal/domain/types"
)

// standingRanks assigns competition ranks to an already sorted list: equal
// neighbours share a rank, otherwise the rank is the 1-based position.
func standingRanks(n int, equal func(i, j int) bool) []int {
	ranks := make([]int, n)
	for i := range ranks {
		if i > 0 && equal(i-1, i) {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

// buildDivisions groups athletes by division and ranks them on total points.
// Ties keep registration order. It also records each athlete's division rank
// for the gym view.
func (f *field) buildDivisions() []types.DivisionLeaderboard {
	members := make([][]int, len(f.divisions))
	for a, athlete := range f.athletes {
		members[athlete.division] = append(members[athlete.division], a)
	}

	// Divisions keep the order in which registrations introduced them.
	order := make([]int, 0, len(f.divisions))
	for d := range f.divisions {
		if len(members[d]) > 0 {
			order = append(order, d)
		}
	}

	out := make([]types.DivisionLeaderboard, 0, len(order))
	for _, d := range order {
		list := members[d]
		// list is in registration order, so equal totals keep it.
		slices.SortStableFunc(list, func(a, b int) int {
			return cmp.Compare(f.athletes[b].total, f.athletes[a].total)
		})
		ranks := standingRanks(len(list), func(i, j int) bool {
			return f.athletes[list[i]].total == f.athletes[list[j]].total
		})

		rows := make([]types.LeaderboardAthlete, len(list))
		for i, a := range list {
			athlete := &f.athletes[a]
			athlete.divisionRank = ranks[i]
			rows[i] = types.LeaderboardAthlete{
				Rank:          ranks[i],
				UserID:        athlete.UserID,
				Name:          athlete.Name,
				AffiliateName: athlete.Affiliate,
				Events:        athlete.results,
				TotalPoints:   athlete.total,
			}
		}
		out = append(out, types.DivisionLeaderboard{
			ID:       f.divisions[d].ID,
			Name:     f.divisions[d].Label,
			Athletes: rows,
		})
	}
	return out
}
