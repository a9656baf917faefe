// Package loadtest generates synthetic competitions and drives a running
// leaderboard service with concurrent requests, verifying every response.
package loadtest

import "time"

// Config holds configuration for a load run against a live service.
type Config struct {
	BaseURL       string        // Base URL of the service
	CompetitionID string        // Competition id or slug to request
	Requests      int           // Number of leaderboard requests
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	FixturePath   string        // Optional fixture the service was started with; enables exact comparison
	Verbose       bool          // Log every request
}

// GenerateConfig shapes a synthetic competition.
type GenerateConfig struct {
	Seed          uint64
	CompetitionID string
	Name          string
	Athletes      int
	Events        int
	Divisions     int // 0 puts everyone in the open division
	Gyms          int // 0 leaves everyone unaffiliated
}

// Stats holds run statistics.
type Stats struct {
	Requests   int
	Successful int
	Failed     int
	Mismatched int
	Athletes   int
	Gyms       int
	Min        time.Duration
	Max        time.Duration
	Mean       time.Duration
	P95        time.Duration
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
