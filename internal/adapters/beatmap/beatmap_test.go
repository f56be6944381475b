package beatmap_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/tops/internal/adapters/beatmap"
	. "github.com/smartystreets/goconvey/convey"
)

const sample = `osu file format v14

[General]
Mode: 0
StackLeniency: 0.5

[Metadata]
Title:Song
Artist:Band
Creator:Mapper
Version:Insane
BeatmapID:123
BeatmapSetID:45

[Difficulty]
HPDrainRate:6
CircleSize:4
OverallDifficulty:8
ApproachRate:9
SliderMultiplier:1.4
SliderTickRate:1

[TimingPoints]
0,500,4,2,0,50,1,0
2000,-50,4,2,0,50,0,0

[HitObjects]
256,192,1000,5,0,0:0:0:0:
100,100,1500,2,0,L|300:100,1,140
100,100,2500,2,0,L|700:100,2,560
256,192,5000,12,0,6000,0:0:0:0:
`

func TestDecode(t *testing.T) {
	Convey("Given a well-formed beatmap", t, func() {
		b, err := beatmap.DecodeBytes([]byte(sample))

		Convey("Then every section should be decoded", func() {
			So(err, ShouldBeNil)
			So(b.FormatVersion, ShouldEqual, 14)
			So(b.Mode, ShouldEqual, 0)
			So(b.StackLeniency, ShouldEqual, 0.5)
			So(b.Metadata.Artist, ShouldEqual, "Band")
			So(b.Metadata.Version, ShouldEqual, "Insane")
			So(b.Metadata.BeatmapID, ShouldEqual, 123)
			So(b.Difficulty.CircleSize, ShouldEqual, 4)
			So(b.Difficulty.ApproachRate, ShouldEqual, 9)
			So(b.TimingPoints, ShouldHaveLength, 2)
			So(b.TimingPoints[1].Uninherited, ShouldBeFalse)
			So(b.TimingPoints[1].SliderVelocity, ShouldEqual, 2)
			So(b.HitObjects, ShouldHaveLength, 4)
		})

		Convey("Then hit objects should carry their kind specific fields", func() {
			So(b.HitObjects[0].Kind, ShouldEqual, beatmap.KindCircle)
			So(b.HitObjects[0].NewCombo, ShouldBeTrue)
			So(b.HitObjects[1].Kind, ShouldEqual, beatmap.KindSlider)
			So(b.HitObjects[1].CurveType, ShouldEqual, 'L')
			So(b.HitObjects[1].ControlPoints, ShouldHaveLength, 2)
			So(b.HitObjects[2].Slides, ShouldEqual, 2)
			So(b.HitObjects[3].Kind, ShouldEqual, beatmap.KindSpinner)
			So(b.HitObjects[3].EndTime, ShouldEqual, 6000)
		})

		Convey("Then circles, sliders and spinners should be counted", func() {
			circles, sliders, spinners := b.Counts()
			So(circles, ShouldEqual, 1)
			So(sliders, ShouldEqual, 2)
			So(spinners, ShouldEqual, 1)
		})
	})

	Convey("Given content without a format header", t, func() {
		_, err := beatmap.Decode(strings.NewReader("[General]\nMode: 0\n"))

		Convey("Then decoding should fail with ErrInvalidHeader", func() {
			So(errors.Is(err, beatmap.ErrInvalidHeader), ShouldBeTrue)
		})
	})

	Convey("Given empty content", t, func() {
		_, err := beatmap.DecodeBytes(nil)

		Convey("Then decoding should fail with ErrInvalidHeader", func() {
			So(errors.Is(err, beatmap.ErrInvalidHeader), ShouldBeTrue)
		})
	})

	Convey("Given hit objects and timing points with unusable numbers", t, func() {
		header := "osu file format v14\n\n[TimingPoints]\n0,500,4,2,0,50,1,0\n\n[HitObjects]\n64,64,100,1,0\n"
		lines := []string{
			"[HitObjects]\n300,300,inf,1,0\n",
			"[HitObjects]\n300,300,NaN,1,0\n",
			"[HitObjects]\n300,300,1e15,1,0\n",
			"[HitObjects]\n300,300,-3000000000,1,0\n",
			"[HitObjects]\n256,192,1000,12,0,1e12\n",
			"[HitObjects]\n1e300,300,1000,1,0\n",
			"[TimingPoints]\ninf,500,4,2,0,50,1,0\n",
			"[TimingPoints]\n0,-inf,4,2,0,50,0,0\n",
		}

		Convey("Then each should fail with ErrInvalidValue", func() {
			for _, extra := range lines {
				_, err := beatmap.DecodeBytes([]byte(header + "\n" + extra))
				So(errors.Is(err, beatmap.ErrInvalidValue), ShouldBeTrue)
			}
		})

		Convey("Then the largest 32-bit time should still decode", func() {
			b, err := beatmap.DecodeBytes([]byte(header + "300,300,2147483647,1,0\n"))
			So(err, ShouldBeNil)
			So(b.HitObjects, ShouldHaveLength, 2)
		})
	})

	Convey("Given an old beatmap with a byte order mark", t, func() {
		content := "\ufeffosu file format v3\n\n[Difficulty]\nOverallDifficulty:7\n\n[TimingPoints]\n0,400\n\n[HitObjects]\n64,64,100,1,0\n"
		b, err := beatmap.DecodeBytes([]byte(content))

		Convey("Then approach rate should follow overall difficulty", func() {
			So(err, ShouldBeNil)
			So(b.FormatVersion, ShouldEqual, 3)
			So(b.Difficulty.ApproachRate, ShouldEqual, 7)
		})

		Convey("Then times should be shifted by the early version offset", func() {
			So(b.HitObjects[0].Time, ShouldEqual, 124)
			So(b.TimingPoints[0].Time, ShouldEqual, 24)
		})
	})

	Convey("Given out of range difficulty values", t, func() {
		content := "osu file format v14\n[Difficulty]\nCircleSize:15\nApproachRate:-2\nSliderMultiplier:9\n"
		b, err := beatmap.DecodeBytes([]byte(content))

		Convey("Then they should be clamped", func() {
			So(err, ShouldBeNil)
			So(b.Difficulty.CircleSize, ShouldEqual, 10)
			So(b.Difficulty.ApproachRate, ShouldEqual, 0)
			So(b.Difficulty.SliderMultiplier, ShouldEqual, 3.6)
		})
	})
}

func TestTiming(t *testing.T) {
	Convey("Given a decoded beatmap", t, func() {
		b, err := beatmap.DecodeBytes([]byte(sample))
		So(err, ShouldBeNil)

		Convey("When looking up timing", func() {
			before, err1 := b.TimingAt(-100)
			after, err2 := b.TimingAt(2500)

			Convey("Then the first uninherited point should apply before it starts", func() {
				So(err1, ShouldBeNil)
				So(before.BeatLength, ShouldEqual, 500)
				So(before.SliderVelocity, ShouldEqual, 1)
			})

			Convey("Then inherited points should change slider velocity only", func() {
				So(err2, ShouldBeNil)
				So(after.BeatLength, ShouldEqual, 500)
				So(after.SliderVelocity, ShouldEqual, 2)
			})
		})

		Convey("When shaping sliders", func() {
			short, err1 := b.Shape(b.HitObjects[1])
			long, err2 := b.Shape(b.HitObjects[2])

			Convey("Then span duration and ticks should follow velocity", func() {
				So(err1, ShouldBeNil)
				So(short.SpanDuration, ShouldEqual, 500)
				So(short.TicksPerSpan, ShouldEqual, 0)
				So(err2, ShouldBeNil)
				So(long.SpanDuration, ShouldEqual, 1000)
				So(long.TicksPerSpan, ShouldEqual, 1)
				So(long.EndTime, ShouldEqual, 4500)
			})
		})

		Convey("When computing the maximum combo", func() {
			combo, err := b.MaxCombo()

			Convey("Then heads, ticks, repeats and tails should all count", func() {
				So(err, ShouldBeNil)
				So(combo, ShouldEqual, 9)
			})
		})

		Convey("When locating slider ends", func() {
			Convey("Then a single span should end at its tail", func() {
				So(b.HitObjects[1].EndPosition(), ShouldResemble, beatmap.Vec2{X: 240, Y: 100})
			})
			Convey("Then a repeated span should return to its head", func() {
				So(b.HitObjects[2].EndPosition(), ShouldResemble, beatmap.Vec2{X: 100, Y: 100})
			})
		})
	})

	Convey("Given a beatmap with only inherited points", t, func() {
		b, err := beatmap.DecodeBytes([]byte("osu file format v14\n[TimingPoints]\n0,-100,4,2,0,50,0,0\n[HitObjects]\n0,0,0,2,0,L|100:0,1,100\n"))
		So(err, ShouldBeNil)

		Convey("Then timing lookups should fail with ErrNoTiming", func() {
			_, err := b.MaxCombo()
			So(errors.Is(err, beatmap.ErrNoTiming), ShouldBeTrue)
		})
	})
}
