package model_test

import (
	"testing"

	"github.com/okian/tops/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRankedStatus(t *testing.T) {
	Convey("Given ranked statuses decoded from the listing", t, func() {
		Convey("Then each known value should have a readable name", func() {
			So(model.StatusRanked.String(), ShouldEqual, "ranked")
			So(model.StatusLoved.String(), ShouldEqual, "loved")
			So(model.StatusPending.String(), ShouldEqual, "pending")
			So(model.RankedStatus(3).String(), ShouldEqual, "unknown")
		})
	})
}

func TestGameMode(t *testing.T) {
	Convey("Given game modes", t, func() {
		So(model.ModeStandard.String(), ShouldEqual, "osu")
		So(model.ModeMania.String(), ShouldEqual, "mania")
		So(model.GameMode(9).String(), ShouldEqual, "unknown")
	})
}

func TestScoreRecord(t *testing.T) {
	Convey("Given a score record", t, func() {
		rec := model.ScoreRecord{
			Judgements: model.Judgements{Geki: 40, N300: 500, Katu: 3, N100: 12, N50: 2, Misses: 1},
		}

		Convey("When it has no beatmap hash", func() {
			Convey("Then HasHash should be false", func() {
				So(rec.HasHash(), ShouldBeFalse)
			})
		})

		Convey("When counting judged objects", func() {
			Convey("Then geki and katu should not be counted twice", func() {
				So(rec.Judgements.Total(), ShouldEqual, 515)
			})
		})
	})
}
