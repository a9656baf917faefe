package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrNoDataSource is returned when neither database_url nor fixture_path is set.
	ErrNoDataSource = errors.New("no data source configured")
)
