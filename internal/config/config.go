// Package config defines run configuration structures and loading hooks.
//
// Conventions:
//   - Defaults reproduce the classic behaviour: databases in the working
//     directory, beatmaps under ./Songs, report written to the working directory.
//   - All future functions must accept context.Context as the first parameter.
//   - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ScoresPath points at the score history database (scores.db).
	ScoresPath string `koanf:"scores_path"`

	// ListingPath points at the beatmap listing database (osu!.db).
	ListingPath string `koanf:"listing_path"`

	// SongsDir is the root of the <folder>/<file>.osu tree.
	SongsDir string `koanf:"songs_dir"`

	// OutputDir receives the tops_<timestamp>.txt report.
	OutputDir string `koanf:"output_dir"`

	// TopLimit caps the number of plays listed in the report.
	TopLimit int `koanf:"top_limit"`
}

// Default values.
const (
	DefaultLogLevel    = "info"
	DefaultScoresPath  = "scores.db"
	DefaultListingPath = "osu!.db"
	DefaultSongsDir    = "Songs"
	DefaultOutputDir   = "."
	DefaultTopLimit    = 100
)

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		ScoresPath:  DefaultScoresPath,
		ListingPath: DefaultListingPath,
		SongsDir:    DefaultSongsDir,
		OutputDir:   DefaultOutputDir,
		TopLimit:    DefaultTopLimit,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.ScoresPath == "":
		return invalid("scores_path must not be empty")
	case c.ListingPath == "":
		return invalid("listing_path must not be empty")
	case c.SongsDir == "":
		return invalid("songs_dir must not be empty")
	case c.OutputDir == "":
		return invalid("output_dir must not be empty")
	case c.TopLimit <= 0:
		return invalid("top_limit must be positive")
	}
	return nil
}
