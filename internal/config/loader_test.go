package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/tops/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TOPS_SONGS_DIR", "/games/osu/Songs")
			_ = os.Setenv("TOPS_TOP_LIMIT", "50")
			_ = os.Setenv("TOPS_LOG_LEVEL", "debug")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SongsDir, convey.ShouldEqual, "/games/osu/Songs")
				convey.So(cfg.TopLimit, convey.ShouldEqual, 50)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.ScoresPath, convey.ShouldEqual, "scores.db")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# local install
scores_path: "/games/osu/scores.db"
listing_path: "/games/osu/osu!.db"
output_dir: "/tmp/reports"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOPS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ScoresPath, convey.ShouldEqual, "/games/osu/scores.db")
				convey.So(cfg.ListingPath, convey.ShouldEqual, "/games/osu/osu!.db")
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/tmp/reports")
				convey.So(cfg.SongsDir, convey.ShouldEqual, "Songs")
				convey.So(cfg.TopLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("songs_dir: \"/from/file\"\ntop_limit: 25\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOPS_CONFIG", tmpFile)
			_ = os.Setenv("TOPS_SONGS_DIR", "/from/env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SongsDir, convey.ShouldEqual, "/from/env")
				convey.So(cfg.TopLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOPS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TOPS_CONFIG", "/nonexistent/tops.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a zero top limit", func() {
			_ = os.Setenv("TOPS_TOP_LIMIT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TOPS_TOP_LIMIT", "lots")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"TOPS_CONFIG",
		"TOPS_LOG_LEVEL",
		"TOPS_SCORES_PATH",
		"TOPS_LISTING_PATH",
		"TOPS_SONGS_DIR",
		"TOPS_OUTPUT_DIR",
		"TOPS_TOP_LIMIT",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "tops-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
