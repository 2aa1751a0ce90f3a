// Package pipeline orchestrates a full dashboard run: collect, persist
// history, annotate against history, and publish artifacts and alerts.
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"

	"weekly-etf-dashboard/internal/alerts"
	"weekly-etf-dashboard/internal/collect"
	"weekly-etf-dashboard/internal/compare"
	"weekly-etf-dashboard/internal/config"
	"weekly-etf-dashboard/internal/history"
	"weekly-etf-dashboard/internal/logging"
	"weekly-etf-dashboard/internal/models"
	"weekly-etf-dashboard/internal/notify"
	"weekly-etf-dashboard/internal/store"

	apperrors "weekly-etf-dashboard/internal/errors"
)

// generatedAtLayout matches the timestamp format the frontend and the
// existing history files use.
const generatedAtLayout = "2006-01-02 15:04 UTC"

// ItemSource produces the day's snapshot records. The network-backed
// Collector is the production implementation.
type ItemSource interface {
	BuildItems(ctx context.Context) []models.SnapshotRecord
	MinItems() int
}

// Pipeline wires the run stages together.
type Pipeline struct {
	cfg      *config.Config
	source   ItemSource
	hist     *history.Store
	engine   *compare.Engine
	recorder store.Recorder
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSource replaces the network collector.
func WithSource(src ItemSource) Option {
	return func(p *Pipeline) { p.source = src }
}

// WithRecorder attaches a run recorder.
func WithRecorder(rec store.Recorder) Option {
	return func(p *Pipeline) { p.recorder = rec }
}

// WithNotifier replaces the notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline from configuration.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		source: collect.New(cfg.Scrape, logger),
		hist:   history.NewStore(cfg.HistoryDir(), logger),
		engine: compare.NewEngine(
			compare.WithRecentWindow(cfg.Compare.RecentWindow),
			compare.WithWorkers(cfg.Compare.Workers),
			compare.WithLogger(logger),
		),
		notifier: notify.NewMultiNotifier(&cfg.Notifications),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes a completed run.
type Result struct {
	GeneratedAt string
	Items       []models.SnapshotRecord
	Annotated   int
	Alerts      []models.Alert
	Restored    bool
}

// Run executes one full dashboard run. The history snapshot is written
// before annotation so today's observations take part in their own
// comparisons; artifact and alert writes follow annotation.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.now()
	generatedAt := start.Format(generatedAtLayout)

	items := p.source.BuildItems(ctx)

	restored := false
	if len(items) < p.source.MinItems() {
		if prev := p.restorePrevious(); prev != nil {
			items = prev
			restored = true
		}
	}

	batch := &models.SnapshotBatch{GeneratedAt: generatedAt, Items: items}
	if _, err := p.hist.WriteToday(batch); err != nil {
		return nil, err
	}

	batches, err := p.hist.Load(p.cfg.History.LookbackDays)
	if err != nil {
		return nil, err
	}
	annotated := p.engine.Annotate(ctx, items, batches, start)

	if err := os.MkdirAll(p.cfg.Data.Dir, 0755); err != nil {
		return nil, apperrors.NewStoreError("mkdir", p.cfg.Data.Dir, err)
	}
	payload := &models.SnapshotBatch{GeneratedAt: generatedAt, Items: items}
	if err := p.writeArtifact(p.cfg.SnapshotPath(), payload); err != nil {
		return nil, err
	}
	// The legacy copy doubles as the fallback source for future runs.
	if err := p.writeArtifact(p.cfg.LegacySnapshotPath(), payload); err != nil {
		return nil, err
	}

	gen := alerts.NewGenerator(p.cfg.Alerts.DropPct)
	emitted := gen.Scan(items)
	for _, a := range emitted {
		logging.LogAlert(p.logger, a.Ticker, string(a.Type), a.Pct)
	}
	if err := p.writeArtifact(p.cfg.AlertsPath(), gen.Artifact(generatedAt)); err != nil {
		return nil, err
	}

	if p.recorder != nil {
		run := &store.RunSummary{
			RunDate:        batch.Date(),
			GeneratedAt:    generatedAt,
			ItemCount:      len(items),
			AnnotatedCount: annotated,
			AlertCount:     len(emitted),
		}
		if _, err := p.recorder.RecordRun(ctx, run, emitted); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to record run")
		}
	}

	if p.notifier != nil {
		if err := p.notifier.SendAlerts(ctx, emitted); err != nil {
			p.logger.Warn().Err(err).Msg("Alert notification failed")
		}
		if err := p.notifier.SendRunSummary(ctx, batch.Date(), len(items), annotated, len(emitted)); err != nil {
			p.logger.Warn().Err(err).Msg("Summary notification failed")
		}
	}

	logging.LogRunSummary(p.logger, len(items), annotated, len(emitted), time.Since(start))

	return &Result{
		GeneratedAt: generatedAt,
		Items:       items,
		Annotated:   annotated,
		Alerts:      emitted,
		Restored:    restored,
	}, nil
}

// restorePrevious loads the legacy snapshot artifact when a scrape
// collapses below the floor. A collapsed scrape must never nuke a good
// published dataset.
func (p *Pipeline) restorePrevious() []models.SnapshotRecord {
	data, err := os.ReadFile(p.cfg.LegacySnapshotPath())
	if err != nil {
		p.logger.Warn().Msg("Scrape below floor and no prior snapshot to restore")
		return nil
	}
	var prev models.SnapshotBatch
	if err := json.Unmarshal(data, &prev); err != nil || len(prev.Items) < p.source.MinItems() {
		p.logger.Warn().Msg("Scrape below floor and prior snapshot unusable")
		return nil
	}
	p.logger.Warn().
		Int("count", len(prev.Items)).
		Str("path", p.cfg.LegacySnapshotPath()).
		Msg("Scrape below floor, restored previous snapshot")
	return prev.Items
}

func (p *Pipeline) writeArtifact(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewStoreError("marshal", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStoreError("write", path, err)
	}
	return nil
}
