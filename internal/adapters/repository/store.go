// Package repository loads competition snapshots for leaderboard computation.
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Store provides read access to one competition's leaderboard inputs.
// Implementations must be safe for concurrent use.
type Store interface {
	// FindCompetition resolves a competition by id, falling back to slug.
	// Returns ErrNotFound if neither matches.
	FindCompetition(ctx context.Context, idOrSlug string) (model.Competition, error)

	// FindTrack returns the competition's track.
	// Returns ErrNotFound if the competition has none.
	FindTrack(ctx context.Context, competitionID string) (model.Track, error)

	// ListPublishedEvents returns published events of a track ordered by
	// track order then id.
	ListPublishedEvents(ctx context.Context, trackID string) ([]model.Event, error)

	// ListRegistrations returns registrations that are not removed, in
	// registration order.
	ListRegistrations(ctx context.Context, competitionID string) ([]model.Registration, error)

	// ListScores returns every score recorded for the given events.
	ListScores(ctx context.Context, eventIDs []string) ([]model.Score, error)

	// Ping reports whether the store can serve queries.
	Ping(ctx context.Context) error

	// Close releases held resources.
	Close()
}
