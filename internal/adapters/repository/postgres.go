package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Query names used as metric labels.
const (
	queryFindCompetition = "find_competition"
	queryFindTrack       = "find_track"
	queryListEvents      = "list_events"
	queryListRegs        = "list_registrations"
	queryListScores      = "list_scores"
)

// PostgresConfig holds PostgreSQL connection pool configuration.
type PostgresConfig struct {
	// URL is a libpq connection string or postgres:// URL.
	URL string

	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32

	// MinConns is the minimum number of connections in the pool.
	MinConns int32

	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPostgresConfig returns pool defaults for the given URL.
func DefaultPostgresConfig(url string) PostgresConfig {
	return PostgresConfig{
		URL:               url,
		MaxConns:          10,
		MinConns:          1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
}

// PoolConfig returns the pgxpool configuration.
func (c PostgresConfig) PoolConfig() (*pgxpool.Config, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("%w: empty database url", ErrInvalidConfig)
	}
	if c.MaxConns <= 0 || c.MinConns < 0 || c.MinConns > c.MaxConns {
		return nil, fmt.Errorf("%w: pool size min=%d max=%d", ErrInvalidConfig, c.MinConns, c.MaxConns)
	}

	config, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database url: %w", ErrInvalidConfig, err)
	}

	config.MaxConns = c.MaxConns
	config.MinConns = c.MinConns
	if c.MaxConnLifetime > 0 {
		config.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = c.MaxConnIdleTime
	}
	if c.HealthCheckPeriod > 0 {
		config.HealthCheckPeriod = c.HealthCheckPeriod
	}
	return config, nil
}

// PostgresStore reads competition data from PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	closed bool
	mu     sync.RWMutex
}

// NewPostgresStore opens a pool and verifies it with a ping.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolConfig, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// acquirePool returns the pool unless the store is closed.
func (s *PostgresStore) acquirePool() (*pgxpool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.pool, nil
}

// observe records latency and failures of one query. A no-rows result is
// an answer, not a failure.
func observe(query string, start time.Time, err error) {
	metrics.RecordStoreQuery(query, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !isNoRows(err) {
		metrics.RecordStoreError(query)
		metrics.RecordErrorByComponent("store", query)
	}
}

// FindCompetition implements Store. An exact id match wins over a slug match.
func (s *PostgresStore) FindCompetition(ctx context.Context, idOrSlug string) (c model.Competition, err error) {
	pool, err := s.acquirePool()
	if err != nil {
		return model.Competition{}, err
	}
	defer func(start time.Time) { observe(queryFindCompetition, start, err) }(time.Now())

	err = pool.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(slug, '')
		FROM competitions
		WHERE id::text = $1 OR slug = $1
		ORDER BY (id::text = $1) DESC
		LIMIT 1
	`, idOrSlug).Scan(&c.ID, &c.Name, &c.Slug)
	if isNoRows(err) {
		return model.Competition{}, fmt.Errorf("competition %q: %w", idOrSlug, ErrNotFound)
	}
	if err != nil {
		return model.Competition{}, fmt.Errorf("postgres: find competition: %w", err)
	}
	return c, nil
}

// FindTrack implements Store.
func (s *PostgresStore) FindTrack(ctx context.Context, competitionID string) (t model.Track, err error) {
	pool, err := s.acquirePool()
	if err != nil {
		return model.Track{}, err
	}
	defer func(start time.Time) { observe(queryFindTrack, start, err) }(time.Now())

	err = pool.QueryRow(ctx, `
		SELECT id::text, competition_id::text
		FROM competition_tracks
		WHERE competition_id::text = $1
		ORDER BY id
		LIMIT 1
	`, competitionID).Scan(&t.ID, &t.CompetitionID)
	if isNoRows(err) {
		return model.Track{}, fmt.Errorf("track of competition %q: %w", competitionID, ErrNotFound)
	}
	if err != nil {
		return model.Track{}, fmt.Errorf("postgres: find track: %w", err)
	}
	return t, nil
}

// ListPublishedEvents implements Store.
func (s *PostgresStore) ListPublishedEvents(ctx context.Context, trackID string) (events []model.Event, err error) {
	pool, err := s.acquirePool()
	if err != nil {
		return nil, err
	}
	defer func(start time.Time) { observe(queryListEvents, start, err) }(time.Now())

	rows, err := pool.Query(ctx, `
		SELECT e.id::text, COALESCE(w.name, ''), e.track_order,
		       e.points_multiplier, COALESCE(e.workout_id::text, ''),
		       COALESCE(w.scheme, ''), e.event_status
		FROM competition_events e
		LEFT JOIN workouts w ON w.id = e.workout_id
		WHERE e.track_id::text = $1 AND e.event_status = $2
		ORDER BY e.track_order, e.id
	`, trackID, model.EventStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("postgres: list events: %w", err)
	}

	events, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Event, error) {
		var e model.Event
		err := row.Scan(&e.ID, &e.Name, &e.TrackOrder, &e.PointsMultiplier, &e.WorkoutID, &e.Scheme, &e.Status)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan events: %w", err)
	}
	return events, nil
}

// ListRegistrations implements Store.
func (s *PostgresStore) ListRegistrations(ctx context.Context, competitionID string) (regs []model.Registration, err error) {
	pool, err := s.acquirePool()
	if err != nil {
		return nil, err
	}
	defer func(start time.Time) { observe(queryListRegs, start, err) }(time.Now())

	rows, err := pool.Query(ctx, `
		SELECT r.id::text, r.user_id::text, r.division_id::text, COALESCE(d.label, ''),
		       COALESCE(r.metadata, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       r.status
		FROM competition_registrations r
		LEFT JOIN users u ON u.id = r.user_id
		LEFT JOIN competition_divisions d ON d.id = r.division_id
		WHERE r.competition_id::text = $1 AND r.status <> $2
		ORDER BY r.created_at, r.id
	`, competitionID, model.RegistrationStatusRemoved)
	if err != nil {
		return nil, fmt.Errorf("postgres: list registrations: %w", err)
	}

	regs, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Registration, error) {
		var r model.Registration
		err := row.Scan(&r.ID, &r.UserID, &r.DivisionID, &r.DivisionLabel, &r.Metadata, &r.FirstName, &r.LastName, &r.Status)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan registrations: %w", err)
	}
	return regs, nil
}

// ListScores implements Store.
func (s *PostgresStore) ListScores(ctx context.Context, eventIDs []string) (scores []model.Score, err error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	pool, err := s.acquirePool()
	if err != nil {
		return nil, err
	}
	defer func(start time.Time) { observe(queryListScores, start, err) }(time.Now())

	rows, err := pool.Query(ctx, `
		SELECT s.user_id::text, s.competition_event_id::text, s.score_value, s.status, s.sort_key
		FROM competition_scores s
		WHERE s.competition_event_id::text = ANY($1)
		ORDER BY s.competition_event_id, s.created_at, s.id
	`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scores: %w", err)
	}

	scores, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Score, error) {
		var sc model.Score
		err := row.Scan(&sc.UserID, &sc.EventID, &sc.Value, &sc.Status, &sc.SortKey)
		return sc, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan scores: %w", err)
	}
	return scores, nil
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	pool, err := s.acquirePool()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close implements Store.
func (s *PostgresStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.pool.Close()
}
