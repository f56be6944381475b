// Package service runs the whole pipeline: load both databases, match and
// evaluate plays, keep the best per beatmap, rank them and write the report.
package service

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tops/internal/adapters/osudb"
	"github.com/okian/tops/internal/adapters/report"
	"github.com/okian/tops/internal/config"
	"github.com/okian/tops/internal/domain/dedupe"
	"github.com/okian/tops/internal/domain/library"
	"github.com/okian/tops/internal/domain/matcher"
	"github.com/okian/tops/internal/domain/model"
	"github.com/okian/tops/internal/domain/performance"
	"github.com/okian/tops/internal/domain/ranking"
	"github.com/okian/tops/pkg/logger"
	"github.com/okian/tops/pkg/metrics"
)

// Service orchestrates one run.
type Service struct {
	scoresPath  string
	listingPath string
	songsDir    string
	outputDir   string
	topLimit    int

	evaluator performance.Evaluator
	metrics   *metrics.Manager
	now       func() time.Time
	logger    logger.Logger
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	ReportPath string
	Report     model.RankedReport
	Match      matcher.Result
	Collapsed  int64
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scoresPath:  config.DefaultScoresPath,
		listingPath: config.DefaultListingPath,
		songsDir:    config.DefaultSongsDir,
		outputDir:   config.DefaultOutputDir,
		topLimit:    config.DefaultTopLimit,
		now:         time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.evaluator == nil {
		s.evaluator = performance.NewCalculator()
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Run executes the pipeline once. Any returned error is fatal for the run;
// per-record problems are logged and skipped.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	log := s.logger.With(logger.String("run_id", sum.RunID))

	listing, scores, err := s.load(ctx, log)
	if err != nil {
		return sum, err
	}

	start := time.Now()
	log.Info(ctx, "processing maps and scores")
	m := matcher.New(listing, os.DirFS(s.songsDir), s.evaluator,
		matcher.WithLogger(log.Named("matcher")),
		matcher.WithObserver(s.metrics),
	)
	sum.Match, err = m.Run(ctx, scores)
	s.metrics.RecordStageDuration(metrics.StageMatch, time.Since(start))
	if err != nil {
		return sum, fmt.Errorf("%w: %w", ErrMatch, err)
	}
	log.Info(ctx, "processed scores",
		logger.Int("visited", sum.Match.Processed),
		logger.Int("matched", len(sum.Match.Entries)),
		logger.Int("skipped", sum.Match.SkippedTotal()),
		logger.Int("outliers", sum.Match.Rejected))

	start = time.Now()
	d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(sum.Match.Entries)))
	for _, e := range sum.Match.Entries {
		d.Offer(ctx, e)
	}
	unique := d.Entries()
	sum.Collapsed = d.Collapsed()
	s.metrics.RecordDuplicatesCollapsed(int(sum.Collapsed))
	s.metrics.UpdateUniqueEntries(len(unique))
	s.metrics.RecordStageDuration(metrics.StageDedupe, time.Since(start))
	log.Info(ctx, "removed duplicates", logger.Int("unique", len(unique)), logger.Int64("collapsed", sum.Collapsed))

	start = time.Now()
	sum.Report = ranking.New(ranking.WithLimit(s.topLimit)).Rank(unique)
	s.metrics.UpdateTotals(sum.Report.WeightedTotal, sum.Report.BonusTotal, sum.Report.FullComboCount)
	s.metrics.RecordStageDuration(metrics.StageRank, time.Since(start))
	log.Info(ctx, "totals computed",
		logger.Float64("total_pp", sum.Report.GrandTotal),
		logger.Float64("weighted_pp", sum.Report.WeightedTotal),
		logger.Float64("bonus_pp", sum.Report.BonusTotal),
		logger.Int("full_combos_9_star", sum.Report.FullComboCount))

	start = time.Now()
	w := report.NewWriter(report.WithDir(s.outputDir), report.WithClock(s.now))
	sum.ReportPath, err = w.Write(ctx, sum.Report)
	s.metrics.RecordStageDuration(metrics.StageReport, time.Since(start))
	if err != nil {
		return sum, fmt.Errorf("%w: %w", ErrReport, err)
	}
	log.Info(ctx, "report written", logger.String("path", sum.ReportPath), logger.Int("entries", len(sum.Report.Top)))

	s.logSummary(ctx, log)
	return sum, nil
}

func (s *Service) load(ctx context.Context, log logger.Logger) (*library.Listing, *library.ScoreTable, error) {
	start := time.Now()
	defer func() { s.metrics.RecordStageDuration(metrics.StageLoad, time.Since(start)) }()

	log.Info(ctx, "reading score database", logger.String("path", s.scoresPath))
	scoreDB, err := osudb.LoadScoreDB(ctx, s.scoresPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	scores := library.NewScoreTable(scoreDB.Groups)
	log.Info(ctx, "score database loaded",
		logger.Int("beatmaps", scores.Groups()),
		logger.Int("scores", scores.Len()),
		logger.Int("version", int(scoreDB.Version)))

	log.Info(ctx, "reading beatmap listing", logger.String("path", s.listingPath))
	listingDB, err := osudb.LoadBeatmapDB(ctx, s.listingPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	listing := library.NewListing(listingDB.Beatmaps)
	log.Info(ctx, "beatmap listing loaded",
		logger.Int("beatmaps", listing.Len()),
		logger.Int("shadowed", listing.Shadowed()),
		logger.Int("version", int(listingDB.Version)))

	s.metrics.SetSourceRecords("score_groups", scores.Groups())
	s.metrics.SetSourceRecords("scores", scores.Len())
	s.metrics.SetSourceRecords("listing", listing.Len())
	return listing, scores, nil
}

func (s *Service) logSummary(ctx context.Context, log logger.Logger) {
	summary, err := s.metrics.Summary()
	if err != nil {
		log.Warn(ctx, "metrics summary unavailable", logger.Error(err))
		return
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fields := make([]logger.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, logger.Float64(k, summary[k]))
	}
	log.Debug(ctx, "run metrics", fields...)
}
