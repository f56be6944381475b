// Package fixtures generates a synthetic client library: a beatmap listing,
// a score database and the matching Songs tree. It is used to exercise the
// pipeline end to end without a real installation.
package fixtures

import (
	"context"
	"crypto/md5" //nolint:gosec // beatmap identity hash, not a security primitive
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tops/internal/adapters/osudb"
	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/mods"
	"github.com/okian/tops/pkg/logger"
)

// Database versions written by the generator.
const (
	ListingVersion = 20211014
	ScoresVersion  = 20210520
)

// MinObjects is the fewest circles a generated beatmap holds.
const MinObjects = 40

// Ranges of the generated content.
const (
	circlesRange   = 160
	minIntervalMS  = 150
	intervalRange  = 250
	rankedOneIn    = 4
	maxMisses      = 3
	maxHundreds    = 20
	playedWithinS  = 365 * 24 * 60 * 60
	randomDivisor  = 1000000
	dirPermission  = 0o755
	filePermission = 0o600
)

var modChoices = []mods.Set{ //nolint:gochecknoglobals // fixed lookup table
	{},
	mods.Of(mods.Hidden),
	mods.Of(mods.HardRock),
	mods.Of(mods.DoubleTime),
	mods.Of(mods.Hidden, mods.DoubleTime),
	mods.Of(mods.NoFail),
}

// File names inside Config.Dir.
const (
	ListingFile = "osu!.db"
	ScoresFile  = "scores.db"
	SongsDir    = "Songs"
)

// randInt returns a random int in [0, n) using crypto/rand.
func randInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randFloat returns a random float64 between 0.0 and 1.0.
func randFloat() float64 {
	return float64(randInt(randomDivisor)) / randomDivisor
}

type generated struct {
	index   int
	entry   model.BeatmapEntry
	circles int
	err     error
}

// Generate writes a complete synthetic library below cfg.Dir.
func Generate(ctx context.Context, cfg *Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if err := cfg.Validate(); err != nil {
		return stats, err
	}
	log := logger.Get().Named("fixtures")
	log.Info(ctx, "generating synthetic library",
		logger.String("dir", cfg.Dir),
		logger.Int("beatmaps", cfg.Beatmaps),
		logger.Int("scores_per_map", cfg.ScoresPerMap))

	songs := filepath.Join(cfg.Dir, SongsDir)
	if err := os.MkdirAll(songs, dirPermission); err != nil {
		return stats, fmt.Errorf("create songs dir: %w", err)
	}

	entries, circles, err := generateBeatmaps(ctx, cfg, songs)
	if err != nil {
		return stats, err
	}

	groups := make([]model.ScoreGroup, 0, len(entries))
	for i, e := range entries {
		if e.Status == model.StatusRanked {
			stats.Ranked++
		}
		g := model.ScoreGroup{BeatmapHash: e.Hash}
		for range cfg.ScoresPerMap {
			g.Scores = append(g.Scores, generatePlay(cfg.Player, e.Hash, circles[i]))
		}
		stats.Scores += len(g.Scores)
		groups = append(groups, g)
	}
	stats.Beatmaps = len(entries)

	if err := writeDB(filepath.Join(cfg.Dir, ListingFile), func(f *os.File) error {
		return osudb.WriteBeatmapDB(f, &osudb.BeatmapDB{
			Version:     ListingVersion,
			FolderCount: int32(len(entries)), //nolint:gosec // bounded by Config.Beatmaps
			PlayerName:  cfg.Player,
			Beatmaps:    entries,
		})
	}); err != nil {
		return stats, err
	}
	if err := writeDB(filepath.Join(cfg.Dir, ScoresFile), func(f *os.File) error {
		return osudb.WriteScoreDB(f, &osudb.ScoreDB{Version: ScoresVersion, Groups: groups})
	}); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "synthetic library written",
		logger.Int("beatmaps", stats.Beatmaps),
		logger.Int("scores", stats.Scores),
		logger.Int("ranked", stats.Ranked),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// generateBeatmaps writes beatmap content concurrently and returns the
// listing entries in index order together with their circle counts.
func generateBeatmaps(ctx context.Context, cfg *Config, songs string) ([]model.BeatmapEntry, []int, error) {
	results := make(chan generated, cfg.Beatmaps)

	workerCount := min(cfg.Workers, cfg.Beatmaps)
	perWorker := cfg.Beatmaps / workerCount

	for worker := range workerCount {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = cfg.Beatmaps // Last worker gets remaining beatmaps
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					results <- generated{index: i, err: ctx.Err()}
					return
				default:
					results <- generateBeatmap(songs, i)
				}
			}
		}(start, end)
	}

	entries := make([]model.BeatmapEntry, cfg.Beatmaps)
	circles := make([]int, cfg.Beatmaps)
	var firstErr error
	for range cfg.Beatmaps {
		var r generated
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("context cancelled during beatmap generation: %w", ctx.Err())
		case r = <-results:
		}
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("generate beatmap %d: %w", r.index, r.err)
			}
			continue
		}
		entries[r.index] = r.entry
		circles[r.index] = r.circles
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return entries, circles, nil
}

func generateBeatmap(songs string, index int) generated {
	n := MinObjects + randInt(circlesRange)
	interval := minIntervalMS + randInt(intervalRange)
	artist := "Synthetic Artist"
	title := fmt.Sprintf("Track %d", index)
	diff := fmt.Sprintf("Level %d", n/10)

	content := JumpMap(n, float64(interval))
	sum := md5.Sum(content) //nolint:gosec // see import

	status := model.StatusLoved
	switch {
	case randInt(rankedOneIn) == 0:
		status = model.StatusRanked
	case index%2 == 0:
		status = model.StatusPending
	}

	entry := model.BeatmapEntry{
		Hash:           hex.EncodeToString(sum[:]),
		Status:         status,
		Mode:           model.ModeStandard,
		FolderName:     fmt.Sprintf("%d %s - %s", index, artist, title),
		FileName:       fmt.Sprintf("%s - %s (tops) [%s].osu", artist, title, diff),
		Artist:         artist,
		Title:          title,
		DifficultyName: diff,
		Creator:        "tops",
		BeatmapSetID:   index,
		BeatmapID:      index,
	}

	dir := filepath.Join(songs, entry.FolderName)
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return generated{index: index, err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, entry.FileName), content, filePermission); err != nil {
		return generated{index: index, err: err}
	}
	return generated{index: index, entry: entry, circles: n}
}

// generatePlay creates a plausible play on a map of circles objects plus one
// spinner.
func generatePlay(player, hash string, circles int) model.ScoreRecord {
	objects := circles + 1
	misses := randInt(maxMisses + 1)
	hundreds := min(randInt(maxHundreds), objects-misses)
	combo := objects
	if misses > 0 {
		combo = max(1, int(float64(objects)*randFloat()))
	}

	return model.ScoreRecord{
		Mode:        model.ModeStandard,
		BeatmapHash: hash,
		PlayerName:  player,
		ReplayHash:  strings.ReplaceAll(uuid.NewString(), "-", ""),
		Judgements: model.Judgements{
			N300:   objects - misses - hundreds,
			N100:   hundreds,
			Misses: misses,
		},
		Score:     (objects - misses) * 300 * combo / objects,
		MaxCombo:  combo,
		FullCombo: misses == 0,
		Mods:      modChoices[randInt(len(modChoices))],
		PlayedAt:  time.Now().UTC().Truncate(time.Second).Add(-time.Duration(randInt(playedWithinS)) * time.Second),
	}
}

// JumpMap renders an osu!standard map of n alternating jumps spaced interval
// milliseconds apart, closed by a spinner.
func JumpMap(n int, interval float64) []byte {
	var b strings.Builder
	b.WriteString("osu file format v14\n\n[General]\nMode: 0\n\n")
	b.WriteString("[Difficulty]\nHPDrainRate:5\nCircleSize:4\nOverallDifficulty:8\nApproachRate:9\nSliderMultiplier:1.4\nSliderTickRate:1\n\n")
	b.WriteString("[TimingPoints]\n0,500,4,2,0,50,1,0\n\n[HitObjects]\n")
	for i := range n {
		x, y := 100, 100
		if i%2 == 1 {
			x, y = 400, 300
		}
		fmt.Fprintf(&b, "%d,%d,%d,1,0,0:0:0:0:\n", x, y, 1000+int(float64(i)*interval))
	}
	end := 1000 + int(float64(n)*interval)
	fmt.Fprintf(&b, "256,192,%d,12,0,%d,0:0:0:0:\n", end, end+2000)
	return []byte(b.String())
}

func writeDB(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
