// Package model contains domain models passed between layers.
package model

// Event statuses.
const (
	EventStatusPublished = "published"
)

// DefaultPointsMultiplier is the event weight, in percent, applied when an
// event carries no multiplier.
const DefaultPointsMultiplier = 100

// Competition identifies a competition by id and optional slug.
type Competition struct {
	ID   string
	Name string
	Slug string
}

// Track is the single programming track of a competition. A competition
// without a track has no leaderboard.
type Track struct {
	ID            string
	CompetitionID string
}

// Event is one scored workout within a competition track.
type Event struct {
	ID               string
	Name             string // workout name shown on the leaderboard
	TrackOrder       int
	PointsMultiplier *int // percent; nil means DefaultPointsMultiplier, 0 scores nothing
	WorkoutID        string
	Scheme           string // time, reps, load, ... (informational only)
	Status           string
}

// Published reports whether the event takes part in scoring.
func (e Event) Published() bool {
	return e.Status == EventStatusPublished
}

// Weight converts the percentage multiplier into a factor applied to
// ladder points.
func (e Event) Weight() float64 {
	return float64(e.Multiplier()) / 100
}

// Multiplier returns the percentage multiplier, defaulted when unset.
func (e Event) Multiplier() int {
	if e.PointsMultiplier == nil {
		return DefaultPointsMultiplier
	}
	return *e.PointsMultiplier
}
