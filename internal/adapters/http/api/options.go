package api

import (
	"time"

	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS allow-list. "*" allows every origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithCacheControl sets max-age and stale-while-revalidate for successful
// leaderboard responses.
func WithCacheControl(maxAge, staleWhileRevalidate time.Duration) Option {
	return func(s *Server) {
		if maxAge >= 0 {
			s.cacheMaxAge = maxAge
		}
		if staleWhileRevalidate >= 0 {
			s.cacheSWR = staleWhileRevalidate
		}
	}
}

// WithReadyTimeout bounds the readiness probe run by /healthz.
func WithReadyTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readyTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
