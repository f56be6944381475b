package performance

import (
	"github.com/okian/tops/internal/adapters/beatmap"
	"github.com/okian/tops/internal/domain/mods"
)

// Attributes are beatmap settings after mod adjustments. Approach rate and
// overall difficulty already account for the clock rate.
type Attributes struct {
	ClockRate    float64
	CircleRadius float64
	ApproachRate float64
	Preempt      float64
	Overall      float64
	Window300    float64
	Window100    float64
	Window50     float64
}

// MapAttributes applies mods to the beatmap difficulty settings.
func MapAttributes(d beatmap.Difficulty, set mods.Set) Attributes {
	cs, ar, od := d.CircleSize, d.ApproachRate, d.OverallDifficulty
	if set.Has(mods.HardRock) {
		cs = min(cs*1.3, 10)
		ar = min(ar*1.4, 10)
		od = min(od*1.4, 10)
	}
	if set.Has(mods.Easy) {
		cs /= 2
		ar /= 2
		od /= 2
	}

	rate := set.ClockRate()
	preempt := approachRateToPreempt(ar) / rate
	window300 := (80 - 6*od) / rate

	return Attributes{
		ClockRate:    rate,
		CircleRadius: 54.4 - 4.48*cs,
		ApproachRate: preemptToApproachRate(preempt),
		Preempt:      preempt,
		Overall:      (80 - window300) / 6,
		Window300:    window300,
		Window100:    (140 - 8*od) / rate,
		Window50:     (200 - 10*od) / rate,
	}
}

func approachRateToPreempt(ar float64) float64 {
	if ar < 5 {
		return 1200 + 120*(5-ar)
	}
	return 1200 - 150*(ar-5)
}

func preemptToApproachRate(preempt float64) float64 {
	if preempt > 1200 {
		return 5 - (preempt-1200)/120
	}
	return 5 + (1200-preempt)/150
}
