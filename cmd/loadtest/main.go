package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/podium/internal/loadtest"
	"github.com/okian/podium/pkg/logger"
)

// Default configuration constants.
const (
	defaultAthletes    = 500
	defaultEvents      = 6
	defaultDivisions   = 4
	defaultGyms        = 25
	defaultRequests    = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		competition = flag.String("competition", "", "Competition id or slug")
		generate    = flag.String("generate", "", "Write a generated fixture to this path and exit")
		athletes    = flag.Int("athletes", defaultAthletes, "Athletes to generate")
		events      = flag.Int("events", defaultEvents, "Events to generate")
		divisions   = flag.Int("divisions", defaultDivisions, "Divisions to generate")
		gyms        = flag.Int("gyms", defaultGyms, "Gyms to generate")
		seed        = flag.Uint64("seed", 1, "Random seed for generation")
		requests    = flag.Int("requests", defaultRequests, "Leaderboard requests to send")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		fixture     = flag.String("fixture", "", "Fixture the service was started with")
		logFile     = flag.String("log", "", "Also write logs to this file")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	closeLog, err := loadtest.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	if *generate != "" {
		fx := loadtest.Generate(loadtest.GenerateConfig{
			Seed:          *seed,
			CompetitionID: *competition,
			Athletes:      *athletes,
			Events:        *events,
			Divisions:     *divisions,
			Gyms:          *gyms,
		})
		if err := loadtest.SaveFixture(ctx, *generate, fx); err != nil {
			logger.Get().Error(ctx, "fixture generation failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	if *competition == "" {
		_, _ = os.Stderr.WriteString("-competition is required\n")
		os.Exit(2)
	}
	_, err = loadtest.Run(ctx, &loadtest.Config{
		BaseURL:       *baseURL,
		CompetitionID: *competition,
		Requests:      *requests,
		Workers:       *workers,
		Timeout:       *timeout,
		FixturePath:   *fixture,
		Verbose:       *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
