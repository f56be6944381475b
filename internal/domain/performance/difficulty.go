package performance

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/tops/internal/adapters/beatmap"
)

// Strain model constants.
const (
	normalizedRadius  = 52.0
	minStrainTime     = 50.0
	starScalingFactor = 0.0675
	peakWeightDecay   = 0.9
	maxStrainSections = 1 << 20

	aimMultiplier   = 26.25
	aimDecay        = 0.15
	aimAngleBegin   = math.Pi / 3
	timingThreshold = 107.0

	speedMultiplier       = 1400.0
	speedDecay            = 0.3
	speedAngleBegin       = 5 * math.Pi / 6
	singleSpacing         = 125.0
	minSpeedBonus         = 75.0
	maxSpeedBonus         = 45.0
	speedBalancingFactor  = 40.0
	defaultSectionLength  = 400.0
	smallCircleThreshold  = 30.0
	smallCircleBonusLimit = 5.0
)

// Difficulty is the result of the strain pass over a beatmap.
type Difficulty struct {
	Aim        float64
	Speed      float64
	Stars      float64
	Attributes Attributes

	MaxCombo int
	Circles  int
	Sliders  int
	Spinners int
}

// object is a hit object prepared for strain evaluation. Times are in
// clock-adjusted milliseconds, positions are radius-normalized.
type object struct {
	spinner    bool
	start      float64
	delta      float64
	strainTime float64
	jump       float64
	travel     float64
	angle      float64
	hasAngle   bool
}

func prepare(b *beatmap.Beatmap, attrs Attributes) []object {
	scale := normalizedRadius / attrs.CircleRadius
	if attrs.CircleRadius < smallCircleThreshold {
		scale *= 1 + min(smallCircleThreshold-attrs.CircleRadius, smallCircleBonusLimit)/50
	}
	scaled := func(v beatmap.Vec2) beatmap.Vec2 { return beatmap.Vec2{X: v.X * scale, Y: v.Y * scale} }

	hos := b.HitObjects
	out := make([]object, len(hos))
	for i, ho := range hos {
		o := object{
			spinner: ho.Kind == beatmap.KindSpinner,
			start:   ho.Time / attrs.ClockRate,
		}
		if ho.Kind == beatmap.KindSlider {
			o.travel = distance(scaled(ho.Pos), scaled(ho.TailPosition())) * float64(ho.Slides)
		}
		if i == 0 {
			out[i] = o
			continue
		}

		prev := hos[i-1]
		o.delta = o.start - out[i-1].start
		o.strainTime = math.Max(o.delta, minStrainTime)
		if !o.spinner {
			o.jump = distance(scaled(ho.Pos), scaled(prev.EndPosition()))
		}
		if i >= 2 && !o.spinner && prev.Kind != beatmap.KindSpinner {
			before := scaled(hos[i-2].EndPosition())
			mid := scaled(prev.EndPosition())
			cur := scaled(ho.Pos)
			v1 := beatmap.Vec2{X: before.X - mid.X, Y: before.Y - mid.Y}
			v2 := beatmap.Vec2{X: cur.X - mid.X, Y: cur.Y - mid.Y}
			dot := v1.X*v2.X + v1.Y*v2.Y
			det := v1.X*v2.Y - v1.Y*v2.X
			o.angle = math.Abs(math.Atan2(det, dot))
			o.hasAngle = true
		}
		out[i] = o
	}
	return out
}

func distance(a, b beatmap.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func aimStrain(cur, prev object) float64 {
	if cur.spinner {
		return 0
	}
	result := 0.0
	if cur.hasAngle && cur.angle > aimAngleBegin {
		const scale = 90.0
		angleBonus := math.Sqrt(
			math.Max(prev.jump-scale, 0) *
				math.Pow(math.Sin(cur.angle-aimAngleBegin), 2) *
				math.Max(cur.jump-scale, 0),
		)
		result = 1.5 * math.Pow(math.Max(0, angleBonus), 0.99) / math.Max(timingThreshold, prev.strainTime)
	}

	jump := math.Pow(cur.jump, 0.99)
	travel := math.Pow(cur.travel, 0.99)
	combined := jump + travel + math.Sqrt(travel*jump)
	return math.Max(
		result+combined/math.Max(cur.strainTime, timingThreshold),
		combined/cur.strainTime,
	)
}

func speedStrain(cur object) float64 {
	if cur.spinner {
		return 0
	}
	dist := math.Min(singleSpacing, cur.travel+cur.jump)
	deltaTime := math.Max(maxSpeedBonus, cur.strainTime)

	speedBonus := 1.0
	if deltaTime < minSpeedBonus {
		speedBonus += math.Pow((minSpeedBonus-deltaTime)/speedBalancingFactor, 2)
	}

	angleBonus := 1.0
	if cur.hasAngle && cur.angle < speedAngleBegin {
		angleBonus = 1 + math.Pow(math.Sin(1.5*(speedAngleBegin-cur.angle)), 2)/3.57
		if cur.angle < math.Pi/2 {
			angleBonus = 1.28
			switch {
			case dist < 90 && cur.angle < math.Pi/4:
				angleBonus += (1 - angleBonus) * math.Min((90-dist)/10, 1)
			case dist < 90:
				angleBonus += (1 - angleBonus) * math.Min((90-dist)/10, 1) *
					math.Sin((math.Pi/2-cur.angle)/(math.Pi/4))
			}
		}
	}

	return (1 + (speedBonus-1)*0.75) * angleBonus *
		(0.95 + speedBonus*math.Pow(dist/singleSpacing, 3.5)) / cur.strainTime
}

// skill accumulates decaying strain and records the peak of each section.
type skill struct {
	multiplier float64
	decay      float64
	value      func(cur, prev object) float64

	strain float64
	peaks  []float64
}

func (s *skill) run(objects []object, sectionLength float64) (float64, error) {
	if len(objects) < 2 {
		return 0, nil
	}
	sectionEnd := math.Ceil(objects[0].start/sectionLength) * sectionLength
	peak := 0.0

	for i := 1; i < len(objects); i++ {
		cur, prev := objects[i], objects[i-1]
		for cur.start > sectionEnd {
			if len(s.peaks) >= maxStrainSections {
				return 0, fmt.Errorf("%w: more than %d strain sections", ErrBeatmapTooLong, maxStrainSections)
			}
			s.peaks = append(s.peaks, peak)
			peak = s.strain * math.Pow(s.decay, (sectionEnd-prev.start)/1000)
			sectionEnd += sectionLength
		}
		s.strain *= math.Pow(s.decay, cur.delta/1000)
		s.strain += s.value(cur, prev) * s.multiplier
		peak = math.Max(peak, s.strain)
	}
	s.peaks = append(s.peaks, peak)

	slices.SortFunc(s.peaks, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	total, weight := 0.0, 1.0
	for _, p := range s.peaks {
		total += p * weight
		weight *= peakWeightDecay
	}
	return total, nil
}

func computeDifficulty(b *beatmap.Beatmap, attrs Attributes, sectionLength float64) (Difficulty, error) {
	maxCombo, err := b.MaxCombo()
	if err != nil {
		return Difficulty{}, err
	}
	circles, sliders, spinners := b.Counts()

	objects := prepare(b, attrs)
	aim := &skill{multiplier: aimMultiplier, decay: aimDecay, value: aimStrain}
	speed := &skill{multiplier: speedMultiplier, decay: speedDecay, value: func(cur, _ object) float64 { return speedStrain(cur) }}

	aimTotal, err := aim.run(objects, sectionLength)
	if err != nil {
		return Difficulty{}, err
	}
	speedTotal, err := speed.run(objects, sectionLength)
	if err != nil {
		return Difficulty{}, err
	}
	aimRating := math.Sqrt(aimTotal) * starScalingFactor
	speedRating := math.Sqrt(speedTotal) * starScalingFactor

	return Difficulty{
		Aim:        aimRating,
		Speed:      speedRating,
		Stars:      aimRating + speedRating + math.Abs(aimRating-speedRating)/2,
		Attributes: attrs,
		MaxCombo:   maxCombo,
		Circles:    circles,
		Sliders:    sliders,
		Spinners:   spinners,
	}, nil
}
