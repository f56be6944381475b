package report_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/tops/internal/adapters/report"
	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/mods"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleReport() model.RankedReport {
	return model.RankedReport{
		Top: []model.ScoredEntry{
			{
				Score:       model.ScoreRecord{Mods: mods.Of(mods.DoubleTime, mods.Hidden)},
				Beatmap:     model.BeatmapEntry{Artist: "Band", Title: "Song", DifficultyName: "Insane"},
				Performance: model.PerformanceResult{PP: 300},
			},
			{
				Performance: model.PerformanceResult{PP: 123.456},
			},
		},
		UniqueEntries:  2,
		WeightedTotal:  417.28,
		BonusTotal:     4.1562,
		GrandTotal:     421.4362,
		FullComboCount: 1,
	}
}

const wantText = "Total pp: 421.44\n" +
	"Total pp (without bonus pp): 417.28\n" +
	"Bonus pp: 4.16\n" +
	"9* PFCs: 1\n" +
	"  1. Band\tSong [Insane]\n" +
	"     300.00pp Hidden, DoubleTime\n" +
	"  2. Unknown Artist\tUnknown Title [Unknown Difficulty]\n" +
	"     123.46pp NoMod\n"

func TestRender(t *testing.T) {
	Convey("Given a ranked report", t, func() {
		var buf bytes.Buffer
		err := report.Render(&buf, sampleReport())

		Convey("Then it should render the header and one block per entry", func() {
			So(err, ShouldBeNil)
			So(buf.String(), ShouldEqual, wantText)
		})
	})

	Convey("Given an empty report", t, func() {
		var buf bytes.Buffer
		err := report.Render(&buf, model.RankedReport{})

		Convey("Then only the header should be rendered", func() {
			So(err, ShouldBeNil)
			So(buf.String(), ShouldEqual, "Total pp: 0.00\nTotal pp (without bonus pp): 0.00\nBonus pp: 0.00\n9* PFCs: 0\n")
		})
	})
}

func TestFileName(t *testing.T) {
	Convey("Given a timestamp", t, func() {
		at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

		Convey("Then the name should embed it with dashes", func() {
			So(report.FileName(at, 0), ShouldEqual, "tops_2024-03-09T14-05-07.txt")
			So(report.FileName(at, 2), ShouldEqual, "tops_2024-03-09T14-05-07_2.txt")
		})
	})
}

var errDiskFull = errors.New("no space left on device")

// failingFile creates the file on disk but refuses every write.
type failingFile struct{ io.WriteCloser }

func (failingFile) Write([]byte) (int, error) { return 0, errDiskFull }

func TestWrite(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	clock := func() time.Time { return at }

	Convey("Given a writer on an empty directory", t, func() {
		dir := t.TempDir()
		w := report.NewWriter(report.WithDir(dir), report.WithClock(clock))

		Convey("When writing a report", func() {
			path, err := w.Write(ctx, sampleReport())

			Convey("Then the file should hold the rendered text", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEqual, filepath.Join(dir, "tops_2024-03-09T14-05-07.txt"))
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, wantText)
			})
		})

		Convey("When writing twice within the same second", func() {
			first, err1 := w.Write(ctx, sampleReport())
			second, err2 := w.Write(ctx, model.RankedReport{})

			Convey("Then the second file should get a suffix and the first should survive", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldEqual, filepath.Join(dir, "tops_2024-03-09T14-05-07_1.txt"))
				data, err := os.ReadFile(first)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, wantText)
			})
		})

		Convey("When every candidate name is taken", func() {
			w := report.NewWriter(report.WithDir(dir), report.WithClock(clock), report.WithMaxAttempts(1))
			_, err1 := w.Write(ctx, sampleReport())
			_, err2 := w.Write(ctx, sampleReport())

			Convey("Then the writer should give up with ErrCreate", func() {
				So(err1, ShouldBeNil)
				So(errors.Is(err2, report.ErrCreate), ShouldBeTrue)
			})
		})
	})

	Convey("Given a file that fails while the report is written", t, func() {
		dir := t.TempDir()
		var opened string
		w := report.NewWriter(report.WithDir(dir), report.WithClock(clock),
			report.WithOpener(func(path string) (io.WriteCloser, error) {
				f, err := report.OpenExclusive(path)
				if err != nil {
					return nil, err
				}
				opened = path
				return failingFile{f}, nil
			}))
		path, err := w.Write(ctx, sampleReport())

		Convey("Then the partial file should be removed", func() {
			So(errors.Is(err, report.ErrWrite), ShouldBeTrue)
			So(errors.Is(err, errDiskFull), ShouldBeTrue)
			So(path, ShouldBeEmpty)
			So(opened, ShouldNotBeEmpty)
			_, statErr := os.Stat(opened)
			So(errors.Is(statErr, os.ErrNotExist), ShouldBeTrue)
		})
	})

	Convey("Given a writer on a missing directory", t, func() {
		w := report.NewWriter(report.WithDir(filepath.Join(t.TempDir(), "absent")), report.WithClock(clock))
		_, err := w.Write(ctx, sampleReport())

		Convey("Then writing should fail with ErrCreate", func() {
			So(errors.Is(err, report.ErrCreate), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := report.NewWriter(report.WithDir(t.TempDir())).Write(cctx, sampleReport())

		Convey("Then nothing should be written", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
