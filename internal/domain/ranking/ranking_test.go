package ranking_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(hash string, pp, stars float64, fc bool) model.ScoredEntry {
	return model.ScoredEntry{
		Score:       model.ScoreRecord{BeatmapHash: hash, FullCombo: fc},
		Beatmap:     model.BeatmapEntry{Hash: hash},
		Performance: model.PerformanceResult{PP: pp, Stars: stars},
	}
}

func pps(entries []model.ScoredEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Performance.PP
	}
	return out
}

func TestTotals(t *testing.T) {
	Convey("Given three entries", t, func() {
		sorted := []model.ScoredEntry{entry("a", 300, 0, false), entry("b", 200, 0, false), entry("c", 100, 0, false)}

		Convey("Then the weighted total should decay by rank", func() {
			So(ranking.WeightedTotal(sorted), ShouldAlmostEqual, 580.25, 1e-9)
		})
	})

	Convey("Given the bonus formula", t, func() {
		Convey("Then no entries should give no bonus", func() {
			So(ranking.BonusTotal(0), ShouldEqual, 0)
		})

		Convey("Then one entry should give a small bonus", func() {
			So(ranking.BonusTotal(1), ShouldAlmostEqual, (417-1.0/3)*0.005, 1e-9)
		})

		Convey("Then a thousand entries should approach the maximum", func() {
			So(ranking.BonusTotal(1000), ShouldAlmostEqual, 413.894179758820, 1e-6)
		})

		Convey("Then the bonus should stop growing past a thousand entries", func() {
			So(ranking.BonusTotal(5000), ShouldEqual, ranking.BonusTotal(1000))
		})
	})
}

func TestFullComboStatistic(t *testing.T) {
	Convey("Given entries around the star range boundaries", t, func() {
		r := ranking.New()
		cases := []struct {
			stars float64
			fc    bool
			count int
		}{
			{9.0, true, 1},
			{9.5, true, 1},
			{10.0, true, 0},
			{8.999, true, 0},
			{9.5, false, 0},
		}

		for _, c := range cases {
			Convey(fmt.Sprintf("When stars are %.3f and full combo is %t", c.stars, c.fc), func() {
				got := r.CountFullCombos([]model.ScoredEntry{entry("a", 1, c.stars, c.fc)})

				Convey(fmt.Sprintf("Then the count should be %d", c.count), func() {
					So(got, ShouldEqual, c.count)
				})
			})
		}
	})
}

func TestSort(t *testing.T) {
	Convey("Given unsorted entries with ties and NaN", t, func() {
		entries := []model.ScoredEntry{
			entry("d", 100, 0, false),
			entry("b", 300, 0, false),
			entry("c", math.NaN(), 0, false),
			entry("a", 300, 0, false),
			entry("e", 200, 0, false),
		}

		Convey("When sorting", func() {
			So(func() { ranking.Sort(entries) }, ShouldNotPanic)

			Convey("Then finite values should be descending with ties by hash", func() {
				var finite []model.ScoredEntry
				for _, e := range entries {
					if !math.IsNaN(e.Performance.PP) {
						finite = append(finite, e)
					}
				}
				So(pps(finite), ShouldResemble, []float64{300, 300, 200, 100})
				So(finite[0].Score.BeatmapHash, ShouldEqual, "a")
				So(finite[1].Score.BeatmapHash, ShouldEqual, "b")
			})
		})
	})

	Convey("Given the same entries in different orders", t, func() {
		rng := rand.New(rand.NewSource(3)) //nolint:gosec // deterministic test data
		var base []model.ScoredEntry
		for i := range 300 {
			base = append(base, entry(fmt.Sprintf("h%03d", i), float64(rng.Intn(50)), 0, false))
		}
		base = append(base, entry("nan", math.NaN(), 0, false))

		Convey("Then ranking should produce identical reports", func() {
			r := ranking.New()
			first := r.Rank(base)
			for range 5 {
				shuffled := append([]model.ScoredEntry(nil), base...)
				rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
				again := r.Rank(shuffled)

				So(len(again.Top), ShouldEqual, len(first.Top))
				for i := range first.Top {
					So(again.Top[i].Score.BeatmapHash, ShouldEqual, first.Top[i].Score.BeatmapHash)
				}
			}
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given more entries than the limit", t, func() {
		var entries []model.ScoredEntry
		for i := range 150 {
			entries = append(entries, entry(fmt.Sprintf("h%03d", i), float64(i), 9.2, i%2 == 0))
		}
		r := ranking.New(ranking.WithLimit(100))

		Convey("When ranking", func() {
			report := r.Rank(entries)

			Convey("Then only the top slice should be truncated", func() {
				So(report.Top, ShouldHaveLength, 100)
				So(report.UniqueEntries, ShouldEqual, 150)
				So(report.Top[0].Performance.PP, ShouldEqual, 149)
				So(report.FullComboCount, ShouldEqual, 75)
				So(report.BonusTotal, ShouldAlmostEqual, ranking.BonusTotal(150), 1e-9)
				So(report.GrandTotal, ShouldAlmostEqual, report.WeightedTotal+report.BonusTotal, 1e-9)
			})

			Convey("Then the input should be left untouched", func() {
				So(entries[0].Performance.PP, ShouldEqual, 0)
			})
		})
	})

	Convey("Given no entries", t, func() {
		report := ranking.New().Rank(nil)

		Convey("Then every total should be zero", func() {
			So(report.Top, ShouldBeEmpty)
			So(report.WeightedTotal, ShouldEqual, 0)
			So(report.BonusTotal, ShouldEqual, 0)
			So(report.GrandTotal, ShouldEqual, 0)
		})
	})

	Convey("Given a custom full combo range", t, func() {
		r := ranking.New(ranking.WithFullComboStars(5, 6))

		Convey("Then only entries inside it should count", func() {
			So(r.CountFullCombos([]model.ScoredEntry{entry("a", 1, 5.5, true), entry("b", 1, 9.5, true)}), ShouldEqual, 1)
		})
	})
}
