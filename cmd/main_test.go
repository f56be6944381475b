package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/tops/internal/app"
	"github.com/okian/tops/internal/config"
	"github.com/okian/tops/internal/fixtures"
	"github.com/okian/tops/pkg/logger"
)

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			setEnv(t, map[string]string{
				"TOPS_SONGS_DIR": "/games/osu/Songs",
				"TOPS_TOP_LIMIT": "25",
			})

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SongsDir, convey.ShouldEqual, "/games/osu/Songs")
				convey.So(cfg.TopLimit, convey.ShouldEqual, 25)
				convey.So(cfg.ScoresPath, convey.ShouldEqual, config.DefaultScoresPath)
			})

			convey.Convey("And the service should be creatable from it", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				_ = logger.Init(logger.WithOutput(io.Discard))
				convey.So(service.New(service.WithConfig(cfg)), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a synthetic library on disk", t, func() {
		dir := t.TempDir()
		out := filepath.Join(dir, "out")
		convey.So(os.MkdirAll(out, 0o755), convey.ShouldBeNil)

		_ = logger.Init(logger.WithOutput(io.Discard))
		_, err := fixtures.Generate(context.Background(), &fixtures.Config{
			Dir: dir, Beatmaps: 6, ScoresPerMap: 2, Workers: 2, Player: "tester",
		})
		convey.So(err, convey.ShouldBeNil)

		setEnv(t, map[string]string{
			"TOPS_SCORES_PATH":  filepath.Join(dir, fixtures.ScoresFile),
			"TOPS_LISTING_PATH": filepath.Join(dir, fixtures.ListingFile),
			"TOPS_SONGS_DIR":    filepath.Join(dir, fixtures.SongsDir),
			"TOPS_OUTPUT_DIR":   out,
			"TOPS_LOG_LEVEL":    "error",
		})

		convey.Convey("When running the application", func() {
			code := run()

			convey.Convey("Then it should exit cleanly and leave one report", func() {
				convey.So(code, convey.ShouldEqual, 0)
				reports, globErr := filepath.Glob(filepath.Join(out, "tops_*.txt"))
				convey.So(globErr, convey.ShouldBeNil)
				convey.So(reports, convey.ShouldHaveLength, 1)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			setEnv(t, map[string]string{"TOPS_TOP_LIMIT": "0"})

			convey.Convey("Then the run should fail", func() {
				convey.So(run(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the databases are missing", func() {
			dir := t.TempDir()
			setEnv(t, map[string]string{
				"TOPS_SCORES_PATH":  filepath.Join(dir, "scores.db"),
				"TOPS_LISTING_PATH": filepath.Join(dir, "osu!.db"),
				"TOPS_LOG_LEVEL":    "error",
			})

			convey.Convey("Then the run should fail", func() {
				convey.So(run(), convey.ShouldEqual, 1)
			})
		})
	})
}
