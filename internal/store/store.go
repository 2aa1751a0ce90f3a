// Package store provides the run recorder: durable run summaries and
// alert history alongside the JSON artifacts.
package store

import (
	"context"

	"weekly-etf-dashboard/internal/models"
)

// Recorder persists run summaries and the alerts each run emitted.
type Recorder interface {
	RecordRun(ctx context.Context, run *RunSummary, alerts []models.Alert) (int64, error)
	RecentRuns(ctx context.Context, limit int) ([]RunSummary, error)
	AlertHistory(ctx context.Context, filter AlertFilter) ([]AlertRecord, error)
	Close() error
}

// RunSummary is one pipeline run's bookkeeping row.
type RunSummary struct {
	ID             int64
	RunDate        string
	GeneratedAt    string
	ItemCount      int
	AnnotatedCount int
	AlertCount     int
}

// AlertRecord is a persisted alert with its originating run.
type AlertRecord struct {
	RunID          int64
	RunDate        string
	Ticker         string
	Type           string
	Pct            float64
	ExDividendDate string
	Message        string
}

// AlertFilter narrows an alert history query.
type AlertFilter struct {
	Ticker string
	Type   string
	Limit  int
}
