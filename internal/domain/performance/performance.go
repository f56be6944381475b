// Package performance computes star ratings and performance points for
// osu!standard plays.
package performance

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"fmt"
	"sync"

	"github.com/okian/tops/internal/adapters/beatmap"
	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/mods"
)

const defaultCacheSize = 256

// Mods that change the strain pass. Everything else only affects pp.
var difficultyMods = mods.Of(mods.Easy, mods.HardRock, mods.DoubleTime, mods.HalfTime, mods.Nightcore)

// Input carries the play-dependent values of an evaluation.
type Input struct {
	Mode     model.GameMode
	Mods     mods.Set
	MaxCombo int
	N300     int
	N100     int
	N50      int
	Misses   int
}

// InputFromScore builds an Input from a stored play.
func InputFromScore(s model.ScoreRecord) Input {
	return Input{
		Mode:     s.Mode,
		Mods:     s.Mods,
		MaxCombo: s.MaxCombo,
		N300:     s.Judgements.N300,
		N100:     s.Judgements.N100,
		N50:      s.Judgements.N50,
		Misses:   s.Judgements.Misses,
	}
}

// Evaluator turns beatmap content and a play into a performance result.
type Evaluator interface {
	// Evaluate honors ctx for cancellation.
	Evaluate(ctx context.Context, content []byte, in Input) (model.PerformanceResult, error)
}

type cacheKey struct {
	sum  [md5.Size]byte
	mods uint32
}

// Calculator implements Evaluator. It is safe for concurrent use.
type Calculator struct {
	sectionLength float64
	cacheSize     int

	mu    sync.Mutex
	cache map[cacheKey]Difficulty
}

var _ Evaluator = (*Calculator)(nil)

// NewCalculator creates a calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		sectionLength: defaultSectionLength,
		cacheSize:     defaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = make(map[cacheKey]Difficulty)
	return c
}

// Evaluate decodes content, computes its difficulty under in.Mods and the
// performance of the play.
func (c *Calculator) Evaluate(ctx context.Context, content []byte, in Input) (model.PerformanceResult, error) {
	if err := ctx.Err(); err != nil {
		return model.PerformanceResult{}, fmt.Errorf("context cancelled: %w", err)
	}
	if in.Mode != model.ModeStandard {
		return model.PerformanceResult{}, fmt.Errorf("%w: %s", ErrUnsupportedMode, in.Mode)
	}

	d, err := c.Difficulty(content, in.Mods)
	if err != nil {
		return model.PerformanceResult{}, err
	}

	pp := computePP(d, score{
		mods:   in.Mods,
		combo:  in.MaxCombo,
		n300:   in.N300,
		n100:   in.N100,
		n50:    in.N50,
		misses: in.Misses,
	})
	return model.PerformanceResult{PP: pp, Stars: d.Stars}, nil
}

// Difficulty computes (or recalls) the difficulty of content under set.
func (c *Calculator) Difficulty(content []byte, set mods.Set) (Difficulty, error) {
	key := cacheKey{sum: md5.Sum(content), mods: set.Bits() & difficultyMods.Bits()} //nolint:gosec // see import
	if d, ok := c.lookup(key); ok {
		return d, nil
	}

	b, err := beatmap.DecodeBytes(content)
	if err != nil {
		return Difficulty{}, fmt.Errorf("%w: %w", ErrInvalidBeatmap, err)
	}
	if b.Mode != int(model.ModeStandard) {
		return Difficulty{}, fmt.Errorf("%w: beatmap mode %d", ErrUnsupportedMode, b.Mode)
	}
	if len(b.HitObjects) == 0 {
		return Difficulty{}, fmt.Errorf("%w: %w", ErrInvalidBeatmap, beatmap.ErrNoHitObjects)
	}

	d, err := computeDifficulty(b, MapAttributes(b.Difficulty, set), c.sectionLength)
	if err != nil {
		return Difficulty{}, fmt.Errorf("%w: %w", ErrInvalidBeatmap, err)
	}
	c.store(key, d)
	return d, nil
}

func (c *Calculator) lookup(key cacheKey) (Difficulty, bool) {
	if c.cacheSize <= 0 {
		return Difficulty{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.cache[key]
	return d, ok
}

func (c *Calculator) store(key cacheKey, d Difficulty) {
	if c.cacheSize <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache) >= c.cacheSize {
		clear(c.cache)
	}
	c.cache[key] = d
}

// CacheLen returns the number of cached difficulty results.
func (c *Calculator) CacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
