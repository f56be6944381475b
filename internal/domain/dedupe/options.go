package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithSentinelKey sets the key shared by every entry without a beatmap hash.
func WithSentinelKey(key string) Option {
	return func(d *inMemoryDeduper) {
		if key != "" {
			d.sentinel = key
		}
	}
}

// WithCapacity presizes the internal map for n distinct beatmaps.
func WithCapacity(n int) Option {
	return func(d *inMemoryDeduper) {
		if n > 0 {
			d.capacity = n
		}
	}
}
