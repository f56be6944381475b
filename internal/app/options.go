package service

import (
	"time"

	"github.com/okian/tops/internal/config"
	"github.com/okian/tops/internal/domain/performance"
	"github.com/okian/tops/pkg/logger"
	"github.com/okian/tops/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig applies paths and limits from a loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		WithScoresPath(cfg.ScoresPath)(s)
		WithListingPath(cfg.ListingPath)(s)
		WithSongsDir(cfg.SongsDir)(s)
		WithOutputDir(cfg.OutputDir)(s)
		WithTopLimit(cfg.TopLimit)(s)
	}
}

// WithScoresPath sets the score database path.
func WithScoresPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.scoresPath = path
		}
	}
}

// WithListingPath sets the beatmap listing database path.
func WithListingPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.listingPath = path
		}
	}
}

// WithSongsDir sets the root directory of beatmap content.
func WithSongsDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.songsDir = dir
		}
	}
}

// WithOutputDir sets the directory the report is written to.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithTopLimit sets how many plays the report lists.
func WithTopLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topLimit = n
		}
	}
}

// WithEvaluator replaces the performance evaluator.
func WithEvaluator(e performance.Evaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock sets the time source for report names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
