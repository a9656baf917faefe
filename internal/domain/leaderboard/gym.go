package leaderboard

import (
	"cmp"
	"slices"

	"github.com/okian/podium/internal/domain/types"
)

// GymContributors is how many athletes per division count toward a team's
// score in each event.
const GymContributors = 6

type gymMember struct {
	athlete int
	entry   types.GymAthleteEntry
}

// buildGyms groups athletes by affiliate and scores each team from its top
// contributors, chosen independently for every event and division. Ties at
// the contributor boundary go to the lower user id. Teams and team members
// with equal scores keep the order in which registrations introduced them.
func (f *field) buildGyms() []types.GymLeaderboard {
	teamIndex := make(map[string]int)
	var names []string
	var rosters [][]int
	for a, athlete := range f.athletes {
		t, ok := teamIndex[athlete.Affiliate]
		if !ok {
			t = len(names)
			teamIndex[athlete.Affiliate] = t
			names = append(names, athlete.Affiliate)
			rosters = append(rosters, nil)
		}
		rosters[t] = append(rosters[t], a)
	}

	gyms := make([]types.GymLeaderboard, 0, len(names))
	for t, roster := range rosters {
		if len(roster) == 0 {
			continue
		}
		members := f.gymMembers(roster)

		total := 0
		for _, m := range members {
			total += m.entry.ContributingTotal
		}
		slices.SortStableFunc(members, func(a, b gymMember) int {
			return cmp.Compare(b.entry.ContributingTotal, a.entry.ContributingTotal)
		})

		entries := make([]types.GymAthleteEntry, len(members))
		for i, m := range members {
			entries[i] = m.entry
		}
		gyms = append(gyms, types.GymLeaderboard{
			Name:         names[t],
			AthleteCount: len(entries),
			TotalScore:   total,
			Athletes:     entries,
		})
	}

	slices.SortStableFunc(gyms, func(a, b types.GymLeaderboard) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})
	ranks := standingRanks(len(gyms), func(i, j int) bool {
		return gyms[i].TotalScore == gyms[j].TotalScore
	})
	for i := range gyms {
		gyms[i].Rank = ranks[i]
	}
	return gyms
}

// gymMembers builds the team entries of one roster and marks contributors.
func (f *field) gymMembers(roster []int) []gymMember {
	members := make([]gymMember, len(roster))
	byDivision := make(map[int][]int)
	var divisionOrder []int
	for i, a := range roster {
		athlete := &f.athletes[a]
		events := make([]types.GymEventEntry, len(athlete.results))
		for e, r := range athlete.results {
			events[e] = types.GymEventEntry{EventID: r.EventID, EventName: r.EventName, Points: r.Points}
		}
		members[i] = gymMember{
			athlete: a,
			entry: types.GymAthleteEntry{
				Name:         athlete.Name,
				Division:     f.divisions[athlete.division].Label,
				DivisionRank: athlete.divisionRank,
				Events:       events,
			},
		}
		if _, ok := byDivision[athlete.division]; !ok {
			divisionOrder = append(divisionOrder, athlete.division)
		}
		byDivision[athlete.division] = append(byDivision[athlete.division], i)
	}

	for e := range f.events {
		for _, d := range divisionOrder {
			group := slices.Clone(byDivision[d])
			slices.SortFunc(group, func(a, b int) int {
				return cmp.Or(
					cmp.Compare(members[b].entry.Events[e].Points, members[a].entry.Events[e].Points),
					cmp.Compare(f.athletes[members[a].athlete].UserID, f.athletes[members[b].athlete].UserID),
				)
			})
			for _, m := range group[:min(GymContributors, len(group))] {
				members[m].entry.Events[e].Contributing = true
				members[m].entry.ContributingTotal += members[m].entry.Events[e].Points
			}
		}
	}
	return members
}
