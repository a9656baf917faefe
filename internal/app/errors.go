package service

import (
	"errors"

	"github.com/okian/podium/internal/domain/leaderboard"
)

// Sentinel kinds returned by ComputeLeaderboard. Match them with errors.Is.
var (
	// ErrCompetitionNotFound means the id or slug resolved to nothing.
	ErrCompetitionNotFound = errors.New("competition not found")

	// ErrComputation covers every other failure, data loading included.
	ErrComputation = leaderboard.ErrComputation
)

// loadError marks a data loading failure as a computation failure while
// keeping the store error reachable through errors.Is.
func loadError(what string, err error) error {
	return &leaderboard.ComputationError{Op: "load " + what, Err: err}
}
