// Package types contains the leaderboard response shapes shared by the
// domain and the HTTP layer.
package types

// LeaderboardResponse is the full computed leaderboard of a competition.
type LeaderboardResponse struct {
	Competition CompetitionInfo       `json:"competition"`
	Divisions   []DivisionLeaderboard `json:"divisions"`
	Gyms        []GymLeaderboard      `json:"gyms"`
}

// CompetitionInfo identifies the competition.
type CompetitionInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DivisionLeaderboard lists a division's athletes ordered by rank.
type DivisionLeaderboard struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Athletes []LeaderboardAthlete `json:"athletes"`
}

// LeaderboardAthlete is one athlete row of a division leaderboard.
type LeaderboardAthlete struct {
	Rank          int           `json:"rank"`
	UserID        string        `json:"userId"`
	Name          string        `json:"name"`
	AffiliateName string        `json:"affiliateName"`
	Events        []EventResult `json:"events"`
	TotalPoints   int           `json:"totalPoints"`
}

// EventResult is an athlete's outcome in one event. Rank 0 means unscored.
type EventResult struct {
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	Points    int    `json:"points"`
	Rank      int    `json:"rank"`
}

// GymLeaderboard is one team's row of the gym leaderboard.
type GymLeaderboard struct {
	Name         string            `json:"name"`
	Rank         int               `json:"rank"`
	AthleteCount int               `json:"athleteCount"`
	TotalScore   int               `json:"totalScore"`
	Athletes     []GymAthleteEntry `json:"athletes"`
}

// GymAthleteEntry is a team member with per-event contribution flags.
type GymAthleteEntry struct {
	Name              string          `json:"name"`
	Division          string          `json:"division"`
	DivisionRank      int             `json:"divisionRank"`
	Events            []GymEventEntry `json:"events"`
	ContributingTotal int             `json:"contributingTotal"`
}

// GymEventEntry marks whether an athlete's event points count for the team.
type GymEventEntry struct {
	EventID      string `json:"eventId"`
	EventName    string `json:"eventName"`
	Points       int    `json:"points"`
	Contributing bool   `json:"contributing"`
}

// Empty returns a response with no divisions and no gyms. The slices are
// non-nil so they encode as [].
func Empty(id, name string) *LeaderboardResponse {
	return &LeaderboardResponse{
		Competition: CompetitionInfo{ID: id, Name: name},
		Divisions:   []DivisionLeaderboard{},
		Gyms:        []GymLeaderboard{},
	}
}
