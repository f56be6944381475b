package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/tops/internal/fixtures"
	"github.com/okian/tops/pkg/logger"
)

// Default configuration constants.
const (
	defaultBeatmaps = 50
	defaultScores   = 3
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
)

func main() {
	var (
		dir      = flag.String("dir", "fixtures", "Output directory")
		beatmaps = flag.Int("beatmaps", defaultBeatmaps, "Number of beatmaps to generate")
		scores   = flag.Int("scores", defaultScores, "Plays stored per beatmap")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent content generators")
		player   = flag.String("player", "player", "Player name written into every play")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fixtures.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &fixtures.Config{
		Dir:          *dir,
		Beatmaps:     *beatmaps,
		ScoresPerMap: *scores,
		Workers:      *workers,
		Player:       *player,
	}
	if _, err := fixtures.Generate(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "fixture generation failed", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}
