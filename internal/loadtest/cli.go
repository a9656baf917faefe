package loadtest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/podium/pkg/logger"
)

// SetupLogging initializes the global logger. When logFile is set, output
// goes to both stdout and the file; the returned func closes it.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	out := io.Writer(os.Stdout)
	closeFn := func() error { return nil }
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}

	if err := logger.Init(logger.WithWriter(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return nil, err
		}
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Podium Load Test Tool
=====================

Generates synthetic competitions and hammers a running leaderboard service
with concurrent requests, verifying every response.

Usage:
  go run ./cmd/loadtest [options]

Generate mode (-generate PATH) writes a fixture and exits:
  -generate string   Fixture file to write
  -competition       Competition id (default "load-SEED")
  -athletes int      Athletes to generate (default 500)
  -events int        Events in the track (default 6)
  -divisions int     Divisions, 0 for open only (default 4)
  -gyms int          Gyms, 0 for unaffiliated only (default 25)
  -seed uint         Random seed (default 1)

Run mode:
  -url string        Base URL of the service (default "http://localhost:9080")
  -competition       Competition id or slug to request
  -requests int      Leaderboard requests to send (default 200)
  -workers int       Concurrent workers (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 30s)
  -fixture string    Fixture the service was started with; compares against a local computation
  -log string        Also write logs to this file
  -verbose           Log every request
  -help              Show this help message

Examples:
  go run ./cmd/loadtest -generate testdata/load.json -athletes 2000 -seed 7
  PODIUM_FIXTURE_PATH=testdata/load.json go run ./cmd
  go run ./cmd/loadtest -competition load-7 -fixture testdata/load.json -requests 1000
`)
}
