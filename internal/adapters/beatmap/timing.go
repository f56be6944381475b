package beatmap

import (
	"math"
	"sort"
)

// Slider geometry limits used by the client.
const (
	maxTicksPerSpan = 1 << 15
	baseVelocity    = 100.0
)

// Timing is the effective beat length and slider velocity at a point in time.
type Timing struct {
	BeatLength     float64
	SliderVelocity float64
}

// TimingAt returns the timing in effect at t. Before the first uninherited
// point the first one applies.
func (b *Beatmap) TimingAt(t float64) (Timing, error) {
	points := b.sortedTiming()
	timing := Timing{BeatLength: math.NaN(), SliderVelocity: 1}
	for _, tp := range points {
		if !tp.Uninherited {
			continue
		}
		timing.BeatLength = tp.BeatLength
		break
	}
	if math.IsNaN(timing.BeatLength) {
		return Timing{}, ErrNoTiming
	}

	for _, tp := range points {
		if tp.Time > t {
			break
		}
		if tp.Uninherited {
			timing.BeatLength = tp.BeatLength
			timing.SliderVelocity = 1
		} else {
			timing.SliderVelocity = tp.SliderVelocity
		}
	}
	return timing, nil
}

func (b *Beatmap) sortedTiming() []TimingPoint {
	if sort.SliceIsSorted(b.TimingPoints, func(i, j int) bool { return b.TimingPoints[i].Time < b.TimingPoints[j].Time }) {
		return b.TimingPoints
	}
	points := append([]TimingPoint(nil), b.TimingPoints...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points
}

// SliderShape is the timing-dependent shape of one slider.
type SliderShape struct {
	SpanDuration float64
	TicksPerSpan int
	EndTime      float64
}

// Shape computes span duration and tick count of a slider.
func (b *Beatmap) Shape(ho HitObject) (SliderShape, error) {
	if ho.Kind != KindSlider {
		return SliderShape{EndTime: math.Max(ho.Time, ho.EndTime)}, nil
	}
	timing, err := b.TimingAt(ho.Time)
	if err != nil {
		return SliderShape{}, err
	}

	velocity := baseVelocity * b.Difficulty.SliderMultiplier * timing.SliderVelocity // px per beat
	shape := SliderShape{}
	if velocity > 0 && timing.BeatLength > 0 {
		shape.SpanDuration = ho.Length / velocity * timing.BeatLength
	}
	tickDistance := velocity / b.Difficulty.SliderTickRate
	if tickDistance > 0 && ho.Length > tickDistance {
		ticks := int(math.Ceil(ho.Length/tickDistance)) - 1
		// Ticks that land on the tail are not counted.
		if float64(ticks)*tickDistance >= ho.Length-0.01 {
			ticks--
		}
		shape.TicksPerSpan = min(max(ticks, 0), maxTicksPerSpan)
	}
	shape.EndTime = ho.Time + shape.SpanDuration*float64(ho.Slides)
	return shape, nil
}

// MaxCombo is the combo of a full combo on this beatmap.
func (b *Beatmap) MaxCombo() (int, error) {
	combo := 0
	for _, ho := range b.HitObjects {
		if ho.Kind != KindSlider {
			combo++
			continue
		}
		shape, err := b.Shape(ho)
		if err != nil {
			return 0, err
		}
		// head, ticks on every span, and one repeat/tail per span
		combo += 1 + shape.TicksPerSpan*ho.Slides + ho.Slides
	}
	return combo, nil
}

// Counts returns the number of circles, sliders and spinners.
func (b *Beatmap) Counts() (circles, sliders, spinners int) {
	for _, ho := range b.HitObjects {
		switch ho.Kind {
		case KindCircle:
			circles++
		case KindSlider:
			sliders++
		case KindSpinner:
			spinners++
		}
	}
	return circles, sliders, spinners
}

// TailPosition approximates the slider tail by walking the control point
// polyline for Length pixels. Curved paths come out slightly short, which is
// fine for cursor travel estimates.
func (ho HitObject) TailPosition() Vec2 {
	if ho.Kind != KindSlider || len(ho.ControlPoints) < 2 {
		return ho.Pos
	}
	remaining := ho.Length
	prev := ho.ControlPoints[0]
	for _, p := range ho.ControlPoints[1:] {
		seg := math.Hypot(p.X-prev.X, p.Y-prev.Y)
		if seg >= remaining && seg > 0 {
			return Vec2{
				X: prev.X + (p.X-prev.X)*remaining/seg,
				Y: prev.Y + (p.Y-prev.Y)*remaining/seg,
			}
		}
		remaining -= seg
		prev = p
	}
	return prev
}

// EndPosition is where the cursor rests when the object ends: the tail for
// sliders with an odd number of slides, the head otherwise.
func (ho HitObject) EndPosition() Vec2 {
	if ho.Kind == KindSlider && ho.Slides%2 == 1 {
		return ho.TailPosition()
	}
	if ho.Kind == KindSpinner {
		return Vec2{X: 256, Y: 192}
	}
	return ho.Pos
}
