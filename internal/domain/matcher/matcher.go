// Package matcher joins stored plays to beatmaps and evaluates them.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path"
	"time"

	"github.com/okian/tops/internal/domain/library"
	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/performance"
	"github.com/okian/tops/pkg/logger"
)

// DefaultCeiling is the performance value treated as a corrupt computation.
const DefaultCeiling = 2000.0

// Placeholders for absent listing fields when building a content path.
const (
	UnknownFolder = "Unknown Folder"
	UnknownFile   = "Unknown File"
)

// Listing finds beatmaps by content hash.
type Listing interface {
	Lookup(hash string) (model.BeatmapEntry, bool)
}

// Scores yields stored plays with their position in the table.
type Scores interface {
	All() iter.Seq2[library.Position, model.ScoreRecord]
	Len() int
}

// Observer is notified of every outcome. *metrics.Manager satisfies it.
type Observer interface {
	RecordScoreProcessed()
	RecordScoreMatched(pp float64)
	RecordScoreSkipped(reason string)
	RecordOutlier()
	RecordEvaluationLatency(d time.Duration)
}

type nopObserver struct{}

func (nopObserver) RecordScoreProcessed()                 {}
func (nopObserver) RecordScoreMatched(float64)            {}
func (nopObserver) RecordScoreSkipped(string)             {}
func (nopObserver) RecordOutlier()                        {}
func (nopObserver) RecordEvaluationLatency(time.Duration) {}

// Matcher turns score records into scored entries.
type Matcher struct {
	listing    Listing
	songs      fs.FS
	evaluator  performance.Evaluator
	ceiling    float64
	skipRanked bool
	observer   Observer
	logger     logger.Logger
}

// New creates a matcher that resolves beatmap content below songs.
func New(listing Listing, songs fs.FS, evaluator performance.Evaluator, opts ...Option) *Matcher {
	m := &Matcher{
		listing:    listing,
		songs:      songs,
		evaluator:  evaluator,
		ceiling:    DefaultCeiling,
		skipRanked: true,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Get().Named("matcher")
	}
	return m
}

// ContentPath returns the path of a beatmap's .osu file relative to the songs
// root.
func ContentPath(b model.BeatmapEntry) string {
	folder, file := b.FolderName, b.FileName
	if folder == "" {
		folder = UnknownFolder
	}
	if file == "" {
		file = UnknownFile
	}
	return path.Join(folder, file)
}

// Match evaluates a single record.
func (m *Matcher) Match(ctx context.Context, rec model.ScoreRecord) Outcome {
	if err := ctx.Err(); err != nil {
		return fatal(err)
	}

	b, ok := m.listing.Lookup(rec.BeatmapHash)
	if !ok {
		return skipped(ReasonBeatmapNotFound, nil)
	}
	if m.skipRanked && b.Status == model.StatusRanked {
		return skipped(ReasonRanked, nil)
	}

	content, err := fs.ReadFile(m.songs, ContentPath(b))
	if err != nil {
		return skipped(ReasonContentUnreadable, err)
	}

	start := time.Now()
	res, err := m.evaluator.Evaluate(ctx, content, performance.InputFromScore(rec))
	m.observer.RecordEvaluationLatency(time.Since(start))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fatal(err)
		}
		return skipped(ReasonEvaluationFailed, err)
	}

	if res.PP >= m.ceiling {
		return rejected(res.PP)
	}
	return matched(model.ScoredEntry{Score: rec, Beatmap: b, Performance: res})
}

// Result summarizes a full matching pass.
type Result struct {
	Entries   []model.ScoredEntry
	Processed int
	Rejected  int
	Skipped   map[Reason]int
}

// SkippedTotal returns the number of skipped records across all reasons.
func (r Result) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// Run matches every record. Skips are logged and counted; the first fatal
// outcome stops the pass and is returned as an error.
func (m *Matcher) Run(ctx context.Context, scores Scores) (Result, error) {
	res := Result{
		Entries: make([]model.ScoredEntry, 0, scores.Len()),
		Skipped: make(map[Reason]int),
	}

	for pos, rec := range scores.All() {
		if pos.Index == 0 {
			m.logger.Debug(ctx, "processing beatmap group",
				logger.Int("group", pos.Group),
				logger.Int("groups", pos.Groups),
				logger.Int("scores", pos.GroupSize))
		}

		out := m.Match(ctx, rec)
		if out.Kind == KindFatal {
			return res, fmt.Errorf("match group %d score %d: %w", pos.Group, pos.Index, out.Err)
		}

		res.Processed++
		m.observer.RecordScoreProcessed()

		switch out.Kind {
		case KindMatched:
			res.Entries = append(res.Entries, out.Entry)
			m.observer.RecordScoreMatched(out.Entry.Performance.PP)
		case KindRejected:
			res.Rejected++
			m.observer.RecordOutlier()
		case KindSkipped:
			res.Skipped[out.Reason]++
			m.observer.RecordScoreSkipped(string(out.Reason))
			m.logSkip(ctx, pos, rec, out)
		}
	}
	return res, nil
}

func (m *Matcher) logSkip(ctx context.Context, pos library.Position, rec model.ScoreRecord, out Outcome) {
	fields := []logger.Field{
		logger.String("reason", string(out.Reason)),
		logger.String("hash", rec.BeatmapHash),
		logger.Int("group", pos.Group),
		logger.Int("index", pos.Index),
	}
	if out.Err != nil {
		fields = append(fields, logger.Error(out.Err))
	}

	// Ranked beatmaps are excluded on purpose.
	if out.Reason == ReasonRanked {
		m.logger.Debug(ctx, "score skipped", fields...)
		return
	}
	m.logger.Warn(ctx, "score skipped", fields...)
}
