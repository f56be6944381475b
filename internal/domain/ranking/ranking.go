// Package ranking orders unique entries and computes the report totals.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/tops/internal/domain/model"
)

// Weighting constants (https://osu.ppy.sh/wiki/en/Performance_points/Weighting_system).
const (
	WeightDecay  = 0.95
	BonusMaximum = 417 - 1.0/3
	BonusDecay   = 0.995
	BonusPlayCap = 1000
	DefaultLimit = 100
	FullComboMin = 9.0
	FullComboMax = 10.0
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithLimit sets how many entries the report keeps.
func WithLimit(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithFullComboStars sets the half-open star range [lo, hi) of the full
// combo statistic.
func WithFullComboStars(lo, hi float64) Option {
	return func(r *Ranker) {
		if lo < hi {
			r.starsMin, r.starsMax = lo, hi
		}
	}
}

// Ranker builds a RankedReport from deduplicated entries.
type Ranker struct {
	limit    int
	starsMin float64
	starsMax float64
}

// New creates a ranker with configuration options.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		limit:    DefaultLimit,
		starsMin: FullComboMin,
		starsMax: FullComboMax,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank sorts a copy of entries and computes every total over all of them.
// Only Top is truncated to the limit.
func (r *Ranker) Rank(entries []model.ScoredEntry) model.RankedReport {
	sorted := slices.Clone(entries)
	Sort(sorted)

	weighted := WeightedTotal(sorted)
	bonus := BonusTotal(len(sorted))
	return model.RankedReport{
		Top:            sorted[:min(r.limit, len(sorted))],
		UniqueEntries:  len(sorted),
		WeightedTotal:  weighted,
		BonusTotal:     bonus,
		GrandTotal:     weighted + bonus,
		FullComboCount: r.CountFullCombos(sorted),
	}
}

// Sort orders entries by performance value, best first. Values that do not
// compare (NaN) count as equal; ties fall back to beatmap hash so the order
// does not depend on the input order.
func Sort(entries []model.ScoredEntry) {
	slices.SortFunc(entries, func(a, b model.ScoredEntry) int {
		return cmp.Compare(a.Score.BeatmapHash, b.Score.BeatmapHash)
	})
	slices.SortStableFunc(entries, func(a, b model.ScoredEntry) int {
		pa, pb := a.Performance.PP, b.Performance.PP
		switch {
		case pa > pb:
			return -1
		case pa < pb:
			return 1
		}
		return 0
	})
}

// WeightedTotal sums sorted values decayed by WeightDecay per rank.
func WeightedTotal(sorted []model.ScoredEntry) float64 {
	total, weight := 0.0, 1.0
	for _, e := range sorted {
		total += e.Performance.PP * weight
		weight *= WeightDecay
	}
	return total
}

// BonusTotal is the saturating bonus for n distinct beatmaps.
func BonusTotal(n int) float64 {
	n = max(0, min(n, BonusPlayCap))
	return BonusMaximum * (1 - math.Pow(BonusDecay, float64(n)))
}

// CountFullCombos counts full combos whose star rating is in the ranker's
// range.
func (r *Ranker) CountFullCombos(entries []model.ScoredEntry) int {
	n := 0
	for _, e := range entries {
		stars := e.Performance.Stars
		if e.Score.FullCombo && stars >= r.starsMin && stars < r.starsMax {
			n++
		}
	}
	return n
}
