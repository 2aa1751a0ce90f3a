// Package compare implements the historical comparison engine: the
// pure, per-ticker computation that turns snapshot history into
// ex-dividend-anchored trend and stability metrics.
package compare

import (
	"context"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"weekly-etf-dashboard/internal/models"
	"weekly-etf-dashboard/internal/timeline"
	"weekly-etf-dashboard/pkg/utils"
)

const (
	// Prior-period targets, in days between ex-dividend events.
	priorWeekDays  = 7
	priorMonthDays = 30

	// priorTolerance is the fuzzy-match window around a prior-period
	// target. Weekly cadence drifts by a day or two around holidays;
	// anchoring on actual distribution events with a +/-3 day window
	// absorbs that without falling back to calendar arithmetic.
	priorTolerance = 3

	// minObservations is the data-sufficiency floor shared by the
	// stability score, the window sum, and the slope.
	minObservations = 4
)

// Engine annotates snapshot records with derived comparison fields.
// All computation is a pure function of the timeline and today's date;
// the engine never mutates history batches.
type Engine struct {
	recentWindow int
	workers      int
	logger       zerolog.Logger
	builder      *timeline.Builder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecentWindow sets the trailing distinct-ex-date window size used
// for the stability score, sum, and slope. Default 8.
func WithRecentWindow(n int) Option {
	return func(e *Engine) {
		if n >= 2 {
			e.recentWindow = n
		}
	}
}

// WithWorkers sets the annotation parallelism. Values below 2 mean
// sequential; parallelism is a throughput knob only, tickers are
// independent either way.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a comparison engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		recentWindow: 8,
		workers:      1,
		logger:       zerolog.Nop(),
		builder:      timeline.NewBuilder(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Annotate computes the derived fields for every record in items, in
// place, from the given history batches and today's date. It returns
// the number of records that received at least the days_since_ex_div
// anchor field. Records with insufficient history keep all derived
// fields null; that is the expected steady state for new tickers, not
// an error.
func (e *Engine) Annotate(ctx context.Context, items []models.SnapshotRecord, history []models.SnapshotBatch, today time.Time) int {
	timelines := e.builder.BuildAll(history)

	for i := range items {
		items[i].ResetDerived()
	}

	annotated := make([]bool, len(items))
	if e.workers >= 2 {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for i := range items {
			i := i
			g.Go(func() error {
				// Each goroutine writes only to its own record and its
				// own annotated slot; history stays read-only.
				annotated[i] = e.annotateOne(&items[i], timelines[items[i].Ticker], today)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range items {
			annotated[i] = e.annotateOne(&items[i], timelines[items[i].Ticker], today)
		}
	}

	n := 0
	for _, ok := range annotated {
		if ok {
			n++
		}
	}
	return n
}

// AnnotateTicker computes derived fields for a single record. Exposed
// for the compare CLI command.
func (e *Engine) AnnotateTicker(rec *models.SnapshotRecord, history []models.SnapshotBatch, today time.Time) bool {
	timelines := e.builder.BuildAll(history)
	rec.ResetDerived()
	return e.annotateOne(rec, timelines[rec.Ticker], today)
}

func (e *Engine) annotateOne(rec *models.SnapshotRecord, entries []models.TimelineEntry, today time.Time) bool {
	rows, err := timeline.Qualify(entries)
	if err != nil {
		return false
	}

	// Anchor on the entry with the greatest ex-dividend date; ties go to
	// the later run, matching the window dedupe policy below.
	anchorIdx := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].ExDivDate.String >= rows[anchorIdx].ExDivDate.String {
			anchorIdx = i
		}
	}
	anchor := rows[anchorIdx]

	anchorEx, err := utils.ParseDay(anchor.ExDivDate.String)
	if err != nil {
		// Malformed upstream date: skip the ticker, never the run.
		e.logger.Debug().Str("ticker", rec.Ticker).Str("ex_div", anchor.ExDivDate.String).Msg("unparseable ex-dividend date, skipping")
		return false
	}

	// Negative means the next ex-dividend date is already scheduled;
	// that is meaningful, not an error.
	rec.DaysSinceExDiv = null.IntFrom(int64(utils.DaysBetween(today, anchorEx)))

	if prior := findPrior(rows, anchorIdx, anchorEx, priorWeekDays); prior != nil {
		rec.PriceChgEx1WPct = utils.PctChange(anchor.Price, prior.Price)
		rec.DistChgEx1WPct = utils.PctChange(anchor.Distribution, prior.Distribution)
		rec.NAVChgEx1WPct = utils.PctChange(anchor.ReferenceValue, prior.ReferenceValue)
	}
	if prior := findPrior(rows, anchorIdx, anchorEx, priorMonthDays); prior != nil {
		rec.PriceChgEx1MPct = utils.PctChange(anchor.Price, prior.Price)
		rec.DistChgEx1MPct = utils.PctChange(anchor.Distribution, prior.Distribution)
		rec.NAVChgEx1MPct = utils.PctChange(anchor.ReferenceValue, prior.ReferenceValue)
	}

	dists := recentDistributions(rows, e.recentWindow)
	rec.DistStabilityScore = stabilityScore(dists)
	rec.DistSum8W = windowSum(dists)
	rec.DistSlope8W = windowSlope(dists)

	return true
}

// findPrior scans the timeline in reverse run-date order, excluding the
// anchor, and returns the first entry whose ex-dividend date sits within
// the tolerance window of daysBack days before the anchor. The
// most-recent-wins tie-break is deliberate: downstream alert thresholds
// were tuned against it, so a closer-but-older match must not be
// preferred.
func findPrior(rows []models.TimelineEntry, anchorIdx int, anchorEx time.Time, daysBack int) *models.TimelineEntry {
	for i := len(rows) - 1; i >= 0; i-- {
		if i == anchorIdx {
			continue
		}
		ex, err := utils.ParseDay(rows[i].ExDivDate.String)
		if err != nil {
			continue
		}
		delta := utils.DaysBetween(anchorEx, ex)
		diff := delta - daysBack
		if diff < 0 {
			diff = -diff
		}
		if diff <= priorTolerance {
			return &rows[i]
		}
	}
	return nil
}

// recentDistributions collects the distribution amounts of the last
// windowSize distinct ex-dividend events across the whole timeline,
// in chronological order. When the same ex-date appears in several
// runs the later run's value wins. The window intentionally spans
// whatever history is loaded: a sparsely reported ticker's 8 events
// may cover far more than 8 calendar weeks.
func recentDistributions(rows []models.TimelineEntry, windowSize int) []null.Float {
	byEx := make(map[string]null.Float, len(rows))
	var order []string
	for _, r := range rows {
		key := r.ExDivDate.String
		if _, seen := byEx[key]; !seen {
			order = append(order, key)
		}
		byEx[key] = r.Distribution
	}
	sortStrings(order)
	if len(order) > windowSize {
		order = order[len(order)-windowSize:]
	}
	dists := make([]null.Float, len(order))
	for i, key := range order {
		dists[i] = byEx[key]
	}
	return dists
}
