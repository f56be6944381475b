package performance

import (
	"math"

	"github.com/okian/tops/internal/domain/mods"
)

// Mods under which a play is not worth anything.
var unrankedMods = []mods.Mod{mods.Relax, mods.Autopilot, mods.Autoplay, mods.Cinema, mods.Target}

// score is the play-dependent half of the calculation.
type score struct {
	mods                    mods.Set
	combo                   int
	n300, n100, n50, misses int
}

func (s score) totalHits() int { return s.n300 + s.n100 + s.n50 + s.misses }

func (s score) accuracy() float64 {
	total := s.totalHits()
	if total == 0 {
		return 0
	}
	return float64(50*s.n50+100*s.n100+300*s.n300) / float64(300*total)
}

func computePP(d Difficulty, s score) float64 {
	for _, m := range unrankedMods {
		if s.mods.Has(m) {
			return 0
		}
	}

	multiplier := 1.12
	if s.mods.Has(mods.NoFail) {
		multiplier *= 0.90
	}
	if s.mods.Has(mods.SpunOut) && s.totalHits() > 0 {
		multiplier *= 1 - math.Pow(float64(d.Spinners)/float64(s.totalHits()), 0.85)
	}

	aim := aimValue(d, s)
	speed := speedValue(d, s)
	acc := accuracyValue(d, s)

	return math.Pow(
		math.Pow(aim, 1.1)+math.Pow(speed, 1.1)+math.Pow(acc, 1.1),
		1/1.1,
	) * multiplier
}

func strainToValue(strain float64) float64 {
	return math.Pow(5*math.Max(1, strain/starScalingFactor)-4, 3) / 100000
}

func lengthBonus(totalHits int) float64 {
	bonus := 0.95 + 0.4*math.Min(1, float64(totalHits)/2000)
	if totalHits > 2000 {
		bonus += math.Log10(float64(totalHits)/2000) * 0.5
	}
	return bonus
}

func comboScaling(d Difficulty, s score) float64 {
	if d.MaxCombo <= 0 {
		return 1
	}
	return math.Min(math.Pow(float64(s.combo), 0.8)/math.Pow(float64(d.MaxCombo), 0.8), 1)
}

func aimValue(d Difficulty, s score) float64 {
	raw := d.Aim
	if s.mods.Has(mods.TouchDevice) {
		raw = math.Pow(raw, 0.8)
	}
	value := strainToValue(raw)
	value *= lengthBonus(s.totalHits())
	value *= math.Pow(0.97, float64(s.misses))
	value *= comboScaling(d, s)

	ar := d.Attributes.ApproachRate
	arFactor := 1.0
	if ar > 10.33 {
		arFactor += 0.3 * (ar - 10.33)
	} else if ar < 8 {
		arFactor += 0.01 * (8 - ar)
	}
	value *= arFactor

	if s.mods.Has(mods.Hidden) {
		value *= 1 + 0.04*(12-ar)
	}
	if s.mods.Has(mods.Flashlight) {
		value *= flashlightBonus(s.totalHits())
	}

	value *= 0.5 + s.accuracy()/2
	value *= 0.98 + math.Pow(d.Attributes.Overall, 2)/2500
	return value
}

func flashlightBonus(totalHits int) float64 {
	hits := float64(totalHits)
	bonus := 1 + 0.35*math.Min(1, hits/200)
	if hits > 200 {
		bonus += 0.3 * math.Min(1, (hits-200)/300)
	}
	if hits > 500 {
		bonus += (hits - 500) / 1200
	}
	return bonus
}

func speedValue(d Difficulty, s score) float64 {
	value := strainToValue(d.Speed)
	value *= lengthBonus(s.totalHits())
	value *= math.Pow(0.97, float64(s.misses))
	value *= comboScaling(d, s)

	ar := d.Attributes.ApproachRate
	if ar > 10.33 {
		value *= 1 + 0.3*(ar-10.33)
	}
	if s.mods.Has(mods.Hidden) {
		value *= 1 + 0.04*(12-ar)
	}

	value *= 0.02 + s.accuracy()
	value *= 0.96 + math.Pow(d.Attributes.Overall, 2)/1600
	return value
}

func accuracyValue(d Difficulty, s score) float64 {
	circles := d.Circles
	if s.mods.Has(mods.ScoreV2) {
		circles += d.Sliders
	}
	if circles <= 0 {
		return 0
	}

	// Only circles are judged on timing; assume the best hits landed on the
	// other objects.
	better := float64((s.n300-(s.totalHits()-circles))*6+s.n100*2+s.n50) / float64(circles*6)
	better = math.Max(0, better)

	value := math.Pow(1.52163, d.Attributes.Overall) * math.Pow(better, 24) * 2.83
	value *= math.Min(1.15, math.Pow(float64(circles)/1000, 0.3))
	if s.mods.Has(mods.Hidden) {
		value *= 1.08
	}
	if s.mods.Has(mods.Flashlight) {
		value *= 1.02
	}
	return value
}
