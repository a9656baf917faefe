package repository

import (
	"context"
	"fmt"
)

// Schema is the subset of the competition database PostgresStore reads.
// Tables are created only if missing.
const Schema = `
CREATE TABLE IF NOT EXISTS competitions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT UNIQUE
);

CREATE TABLE IF NOT EXISTS competition_tracks (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS workouts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    scheme TEXT
);

CREATE TABLE IF NOT EXISTS competition_events (
    id TEXT PRIMARY KEY,
    track_id TEXT NOT NULL REFERENCES competition_tracks(id) ON DELETE CASCADE,
    workout_id TEXT REFERENCES workouts(id),
    track_order INTEGER NOT NULL DEFAULT 0,
    points_multiplier INTEGER,
    event_status TEXT NOT NULL DEFAULT 'draft'
);

CREATE INDEX IF NOT EXISTS idx_competition_events_track ON competition_events(track_id, track_order);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    first_name TEXT,
    last_name TEXT
);

CREATE TABLE IF NOT EXISTS competition_divisions (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS competition_registrations (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    division_id TEXT REFERENCES competition_divisions(id),
    metadata TEXT,
    status TEXT NOT NULL DEFAULT 'ACTIVE',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_competition_registrations_competition ON competition_registrations(competition_id);

CREATE TABLE IF NOT EXISTS competition_scores (
    id BIGSERIAL PRIMARY KEY,
    competition_event_id TEXT NOT NULL REFERENCES competition_events(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    score_value DOUBLE PRECISION,
    status TEXT NOT NULL,
    sort_key TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_competition_scores_event ON competition_scores(competition_event_id);
`

// EnsureSchema creates the tables PostgresStore reads if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	pool, err := s.acquirePool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}
