package matcher

import (
	"github.com/okian/tops/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithLogger sets a custom logger for the matcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver sets the observer notified of every outcome.
func WithObserver(o Observer) Option {
	return func(m *Matcher) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithCeiling sets the performance value at or above which an entry is
// treated as an outlier.
func WithCeiling(pp float64) Option {
	return func(m *Matcher) {
		if pp > 0 {
			m.ceiling = pp
		}
	}
}

// WithSkipRanked controls whether beatmaps with ranked status are skipped.
func WithSkipRanked(skip bool) Option {
	return func(m *Matcher) {
		m.skipRanked = skip
	}
}
