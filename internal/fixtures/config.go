package fixtures

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a Config cannot produce a library.
var ErrInvalidConfig = errors.New("invalid fixture config")

// Config holds configuration for a synthetic library.
type Config struct {
	Dir          string // Directory receiving osu!.db, scores.db and Songs/
	Beatmaps     int    // Number of beatmaps to generate
	ScoresPerMap int    // Plays stored per beatmap
	Workers      int    // Number of concurrent content generators
	Player       string // Player name written into every play
}

// Stats holds generation statistics
type Stats struct {
	Beatmaps  int
	Scores    int
	Ranked    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Validate reports the first unusable field.
func (c *Config) Validate() error {
	switch {
	case c.Dir == "":
		return fmt.Errorf("%w: dir must not be empty", ErrInvalidConfig)
	case c.Beatmaps <= 0:
		return fmt.Errorf("%w: beatmaps must be positive", ErrInvalidConfig)
	case c.ScoresPerMap < 0:
		return fmt.Errorf("%w: scores per map must not be negative", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	return nil
}
