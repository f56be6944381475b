package beatmap

import "errors"

// Sentinel kinds for decode errors.
var (
	ErrInvalidHeader = errors.New("invalid .osu header")
	ErrNoHitObjects  = errors.New("beatmap has no hit objects")
	ErrNoTiming      = errors.New("beatmap has no uninherited timing point")
	ErrInvalidValue  = errors.New("value out of range")
)
