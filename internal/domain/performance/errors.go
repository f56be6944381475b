package performance

import "errors"

// Evaluation errors.
var (
	ErrUnsupportedMode = errors.New("unsupported game mode")
	ErrInvalidBeatmap  = errors.New("invalid beatmap content")
	ErrBeatmapTooLong  = errors.New("beatmap too long to rate")
)
