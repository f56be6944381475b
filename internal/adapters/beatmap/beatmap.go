// Package beatmap decodes the text .osu beatmap format into the subset of
// fields needed for difficulty and performance calculation.
package beatmap

// Format constants.
const (
	// Files older than v5 store times 24ms early.
	earlyVersionTimingOffset = 24
	maxManiaKeyCount         = 18
	maxParseValue            = 1<<31 - 1
)

// Beatmap is a decoded .osu file.
type Beatmap struct {
	FormatVersion int
	Mode          int
	StackLeniency float64

	Metadata   Metadata
	Difficulty Difficulty

	TimingPoints []TimingPoint
	HitObjects   []HitObject
}

// Metadata is the [Metadata] section.
type Metadata struct {
	Title, Artist, Creator, Version string
	BeatmapID, BeatmapSetID         int
}

// Difficulty is the [Difficulty] section.
type Difficulty struct {
	HPDrainRate       float64
	CircleSize        float64
	OverallDifficulty float64
	ApproachRate      float64
	SliderMultiplier  float64
	SliderTickRate    float64
}

// TimingPoint is one line of [TimingPoints]. Uninherited points carry a beat
// length; inherited points carry a slider velocity multiplier.
type TimingPoint struct {
	Time        float64
	BeatLength  float64
	Uninherited bool
	// SliderVelocity is 1 for uninherited points.
	SliderVelocity float64
}

// Kind enumerates hit object types.
type Kind uint8

// Hit object kinds.
const (
	KindCircle Kind = iota
	KindSlider
	KindSpinner
	KindHold
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	case KindHold:
		return "hold"
	}
	return "unknown"
}

// Vec2 is a playfield position in osu!pixels.
type Vec2 struct{ X, Y float64 }

// HitObject is one line of [HitObjects]. Slider and end-time fields are zero
// for kinds that do not use them.
type HitObject struct {
	Kind     Kind
	Pos      Vec2
	Time     float64
	NewCombo bool

	// Sliders.
	CurveType     byte
	ControlPoints []Vec2
	Slides        int
	Length        float64

	// Spinners and holds.
	EndTime float64
}

// type bits of a hit object line.
const (
	typeCircle   = 1 << 0
	typeSlider   = 1 << 1
	typeNewCombo = 1 << 2
	typeSpinner  = 1 << 3
	typeHold     = 1 << 7
)
