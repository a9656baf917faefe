package repository

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/okian/podium/internal/domain/model"
)

// Fixture is the JSON document MemoryStore loads.
type Fixture struct {
	Competitions []CompetitionFixture `json:"competitions"`
}

// CompetitionFixture holds one competition and everything scored in it.
// Track may be omitted to model a competition that has not been set up yet.
type CompetitionFixture struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Slug          string                `json:"slug,omitempty"`
	Track         *TrackFixture         `json:"track,omitempty"`
	Registrations []RegistrationFixture `json:"registrations"`
	Scores        []ScoreFixture        `json:"scores"`
}

// TrackFixture holds the events of a competition track.
type TrackFixture struct {
	ID     string         `json:"id"`
	Events []EventFixture `json:"events"`
}

type EventFixture struct {
	ID               string `json:"id"`
	Name             string `json:"workoutName"`
	TrackOrder       int    `json:"trackOrder"`
	PointsMultiplier *int   `json:"pointsMultiplier,omitempty"`
	WorkoutID        string `json:"workoutId,omitempty"`
	Scheme           string `json:"scheme,omitempty"`
	Status           string `json:"eventStatus"`
}

type RegistrationFixture struct {
	ID            string  `json:"id"`
	UserID        string  `json:"userId"`
	DivisionID    *string `json:"divisionId,omitempty"`
	DivisionLabel string  `json:"divisionLabel,omitempty"`
	Metadata      string  `json:"metadata,omitempty"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Status        string  `json:"status,omitempty"`
}

type ScoreFixture struct {
	UserID  string   `json:"userId"`
	EventID string   `json:"competitionEventId"`
	Value   *float64 `json:"scoreValue"`
	Status  string   `json:"status"`
	SortKey *string  `json:"sortKey,omitempty"`
}

// MemoryStore serves competitions from memory. It backs local runs from a
// fixture file and service tests.
type MemoryStore struct {
	mu           sync.RWMutex
	competitions map[string]*CompetitionFixture
	slugs        map[string]string
	tracks       map[string]*CompetitionFixture // track id -> owner
	events       map[string]*CompetitionFixture // event id -> owner
	closed       bool
}

// NewMemoryStore creates a store holding the given competitions.
func NewMemoryStore(competitions ...CompetitionFixture) (*MemoryStore, error) {
	s := &MemoryStore{
		competitions: make(map[string]*CompetitionFixture),
		slugs:        make(map[string]string),
		tracks:       make(map[string]*CompetitionFixture),
		events:       make(map[string]*CompetitionFixture),
	}
	for _, c := range competitions {
		if err := s.Put(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadFixture reads a JSON fixture file into a new MemoryStore.
func LoadFixture(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixture, err)
	}
	defer func() { _ = f.Close() }()
	return ReadFixture(f)
}

// ReadFixture decodes a JSON fixture into a new MemoryStore.
func ReadFixture(r io.Reader) (*MemoryStore, error) {
	var fx Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixture, err)
	}
	return NewMemoryStore(fx.Competitions...)
}

// Put adds or replaces a competition.
func (s *MemoryStore) Put(c CompetitionFixture) error {
	if c.ID == "" {
		return fmt.Errorf("%w: competition without id", ErrFixture)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.competitions[c.ID]; ok {
		s.forget(old)
	}
	s.competitions[c.ID] = &c
	if c.Slug != "" {
		s.slugs[c.Slug] = c.ID
	}
	if c.Track != nil {
		s.tracks[c.Track.ID] = &c
		for _, e := range c.Track.Events {
			s.events[e.ID] = &c
		}
	}
	return nil
}

func (s *MemoryStore) forget(c *CompetitionFixture) {
	if c.Slug != "" && s.slugs[c.Slug] == c.ID {
		delete(s.slugs, c.Slug)
	}
	if c.Track != nil {
		delete(s.tracks, c.Track.ID)
		for _, e := range c.Track.Events {
			delete(s.events, e.ID)
		}
	}
}

func (s *MemoryStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// FindCompetition implements Store.
func (s *MemoryStore) FindCompetition(ctx context.Context, idOrSlug string) (model.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return model.Competition{}, err
	}

	c, ok := s.competitions[idOrSlug]
	if !ok {
		if id, bySlug := s.slugs[idOrSlug]; bySlug {
			c, ok = s.competitions[id]
		}
	}
	if !ok {
		return model.Competition{}, fmt.Errorf("competition %q: %w", idOrSlug, ErrNotFound)
	}
	return model.Competition{ID: c.ID, Name: c.Name, Slug: c.Slug}, nil
}

// FindTrack implements Store.
func (s *MemoryStore) FindTrack(ctx context.Context, competitionID string) (model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return model.Track{}, err
	}

	c, ok := s.competitions[competitionID]
	if !ok || c.Track == nil {
		return model.Track{}, fmt.Errorf("track of competition %q: %w", competitionID, ErrNotFound)
	}
	return model.Track{ID: c.Track.ID, CompetitionID: c.ID}, nil
}

// ListPublishedEvents implements Store.
func (s *MemoryStore) ListPublishedEvents(ctx context.Context, trackID string) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	c, ok := s.tracks[trackID]
	if !ok {
		return nil, nil
	}
	var out []model.Event
	for _, e := range c.Track.Events {
		if e.Status != model.EventStatusPublished {
			continue
		}
		var multiplier *int
		if e.PointsMultiplier != nil {
			m := *e.PointsMultiplier
			multiplier = &m
		}
		out = append(out, model.Event{
			ID:               e.ID,
			Name:             e.Name,
			TrackOrder:       e.TrackOrder,
			PointsMultiplier: multiplier,
			WorkoutID:        e.WorkoutID,
			Scheme:           e.Scheme,
			Status:           e.Status,
		})
	}
	slices.SortStableFunc(out, func(a, b model.Event) int {
		return cmp.Or(cmp.Compare(a.TrackOrder, b.TrackOrder), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// ListRegistrations implements Store.
func (s *MemoryStore) ListRegistrations(ctx context.Context, competitionID string) ([]model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	c, ok := s.competitions[competitionID]
	if !ok {
		return nil, nil
	}
	out := make([]model.Registration, 0, len(c.Registrations))
	for _, r := range c.Registrations {
		if r.Status == model.RegistrationStatusRemoved {
			continue
		}
		out = append(out, model.Registration{
			ID:            r.ID,
			UserID:        r.UserID,
			DivisionID:    r.DivisionID,
			DivisionLabel: r.DivisionLabel,
			Metadata:      r.Metadata,
			FirstName:     r.FirstName,
			LastName:      r.LastName,
			Status:        r.Status,
		})
	}
	return out, nil
}

// ListScores implements Store.
func (s *MemoryStore) ListScores(ctx context.Context, eventIDs []string) ([]model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(eventIDs))
	owners := make(map[*CompetitionFixture]struct{})
	for _, id := range eventIDs {
		wanted[id] = struct{}{}
		if c, ok := s.events[id]; ok {
			owners[c] = struct{}{}
		}
	}

	var out []model.Score
	// Iterate in a fixed order so repeated loads return identical slices.
	ids := make([]string, 0, len(owners))
	for c := range owners {
		ids = append(ids, c.ID)
	}
	slices.Sort(ids)
	for _, id := range ids {
		for _, sc := range s.competitions[id].Scores {
			if _, ok := wanted[sc.EventID]; !ok {
				continue
			}
			out = append(out, model.Score{
				UserID:  sc.UserID,
				EventID: sc.EventID,
				Value:   sc.Value,
				Status:  sc.Status,
				SortKey: sc.SortKey,
			})
		}
	}
	return out, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

// Close implements Store.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
