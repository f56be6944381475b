package mods_test

import (
	"testing"

	"github.com/okian/tops/internal/domain/mods"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSet(t *testing.T) {
	Convey("Given modifier sets", t, func() {
		Convey("When the set is empty", func() {
			s := mods.FromBits(0)

			Convey("Then it should render the NoMod label", func() {
				So(s.Empty(), ShouldBeTrue)
				So(s.String(), ShouldEqual, "NoMod")
				So(s.Mods(), ShouldBeEmpty)
			})
		})

		Convey("When built from raw client bits", func() {
			// HD(8) + DT(64) + NC(512)
			s := mods.FromBits(8 | 64 | 512)

			Convey("Then it should expose each variant in bit order", func() {
				So(s.Has(mods.Hidden), ShouldBeTrue)
				So(s.Has(mods.DoubleTime), ShouldBeTrue)
				So(s.Has(mods.Nightcore), ShouldBeTrue)
				So(s.Has(mods.HardRock), ShouldBeFalse)
				So(s.Len(), ShouldEqual, 3)
				So(s.String(), ShouldEqual, "Hidden, DoubleTime, Nightcore")
				So(s.Bits(), ShouldEqual, uint32(584))
			})
		})

		Convey("When rendering is compared across construction order", func() {
			a := mods.Of(mods.HardRock, mods.Hidden, mods.NoFail)
			b := mods.Of(mods.NoFail, mods.HardRock, mods.Hidden)

			Convey("Then rendering should be stable", func() {
				So(a, ShouldResemble, b)
				So(a.String(), ShouldEqual, "NoFail, Hidden, HardRock")
			})
		})

		Convey("When unknown high bits are present", func() {
			s := mods.FromBits(1<<31 | 16)

			Convey("Then the known bits should still apply but the set render as NoMod", func() {
				So(s.Bits(), ShouldEqual, uint32(16))
				So(s.Has(mods.HardRock), ShouldBeTrue)
				So(s.String(), ShouldEqual, "NoMod")
			})
		})

		Convey("When the highest known bit is set", func() {
			s := mods.FromBits(1 << 30)

			Convey("Then it should render Mirror", func() {
				So(s.String(), ShouldEqual, "Mirror")
			})
		})

		Convey("When asking for the clock rate", func() {
			So(mods.Of().ClockRate(), ShouldEqual, 1.0)
			So(mods.Of(mods.DoubleTime).ClockRate(), ShouldEqual, 1.5)
			So(mods.Of(mods.Nightcore).ClockRate(), ShouldEqual, 1.5)
			So(mods.Of(mods.HalfTime).ClockRate(), ShouldEqual, 0.75)
		})
	})
}
