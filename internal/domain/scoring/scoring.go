// Package scoring ranks raw scores within one event/division and converts
// ranks into ladder points.
package scoring

import (
	"math"

	"github.com/okian/podium/internal/domain/model"
)

// Traditional ladder constants.
const (
	firstPlacePoints = 100
	pointsStep       = 5
)

// TraditionalPoints maps a rank onto the ladder: 100 for first place, 5 less
// for each following rank, never below zero. Ranks <= 0 are treated as 1.
func TraditionalPoints(rank int) int {
	if rank <= 0 {
		return firstPlacePoints
	}
	return max(0, firstPlacePoints-pointsStep*(rank-1))
}

// Points applies an event weight to the ladder value and rounds half up.
func Points(rank int, weight float64) int {
	return int(math.Floor(float64(TraditionalPoints(rank))*weight + 0.5))
}

// Eligibility describes how a score status takes part in ranking.
type Eligibility int

const (
	// Excluded scores receive no rank and no points.
	Excluded Eligibility = iota
	// Active scores are ranked against each other.
	Active
	// DidNotFinish scores tie directly below the last active rank.
	DidNotFinish
)

// Classify returns the ranking eligibility of a score status.
func Classify(status string) Eligibility {
	switch status {
	case model.ScoreStatusScored, model.ScoreStatusCap:
		return Active
	case model.ScoreStatusDNF:
		return DidNotFinish
	default:
		return Excluded
	}
}
