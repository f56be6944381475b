package performance

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithCacheSize bounds how many difficulty results are kept. Zero or a
// negative size disables the cache.
func WithCacheSize(size int) Option {
	return func(c *Calculator) {
		c.cacheSize = size
	}
}

// WithSectionLength overrides the strain section length in milliseconds.
func WithSectionLength(ms float64) Option {
	return func(c *Calculator) {
		if ms > 0 {
			c.sectionLength = ms
		}
	}
}
