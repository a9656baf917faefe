// Package leaderboard turns competition events, registrations and scores
// into ranked division and gym leaderboards.
package leaderboard

import (
	"cmp"
	"slices"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
)

// Input is a read-only snapshot of everything one computation needs.
type Input struct {
	Competition   model.Competition
	Events        []model.Event
	Registrations []model.Registration
	Scores        []model.Score
}

// athleteRecord is one slot of the athlete arena.
type athleteRecord struct {
	model.Athlete
	division     int
	results      []types.EventResult
	total        int
	divisionRank int
}

// field is the normalized, index-addressed form of an Input.
type field struct {
	competition model.Competition
	events      []model.Event
	divisions   []model.Division
	athletes    []athleteRecord
	eventIndex  map[string]int
	userIndex   map[string]int
}

// normalize keeps published events in track order and one athlete per
// active registration. A user registered twice keeps the first registration.
func normalize(in Input) (*field, error) {
	f := &field{
		competition: in.Competition,
		eventIndex:  make(map[string]int, len(in.Events)),
		userIndex:   make(map[string]int, len(in.Registrations)),
	}

	for _, e := range in.Events {
		if !e.Published() {
			continue
		}
		if e.ID == "" {
			return nil, failf("normalize", "event without id at track order %d", e.TrackOrder)
		}
		f.events = append(f.events, e)
	}
	slices.SortStableFunc(f.events, func(a, b model.Event) int {
		return cmp.Or(cmp.Compare(a.TrackOrder, b.TrackOrder), cmp.Compare(a.ID, b.ID))
	})
	for i, e := range f.events {
		if _, dup := f.eventIndex[e.ID]; dup {
			return nil, failf("normalize", "duplicate event %q", e.ID)
		}
		f.eventIndex[e.ID] = i
	}

	divisionIndex := make(map[string]int)
	for _, r := range in.Registrations {
		if !r.Active() {
			continue
		}
		if r.UserID == "" {
			return nil, failf("normalize", "registration %q has no user", r.ID)
		}
		if _, dup := f.userIndex[r.UserID]; dup {
			continue
		}
		athlete := r.Athlete()
		d, ok := divisionIndex[athlete.Division.ID]
		if !ok {
			d = len(f.divisions)
			divisionIndex[athlete.Division.ID] = d
			f.divisions = append(f.divisions, athlete.Division)
		}
		f.userIndex[r.UserID] = len(f.athletes)
		f.athletes = append(f.athletes, athleteRecord{Athlete: athlete, division: d})
	}
	return f, nil
}
