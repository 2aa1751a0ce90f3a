package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/guregu/null/v6"

	"weekly-etf-dashboard/internal/models"
)

func testRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "dashboard.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func sampleAlert(ticker string, typ models.AlertType, pct float64) models.Alert {
	return models.Alert{
		Ticker:         ticker,
		Type:           typ,
		Pct:            pct,
		ExDividendDate: null.StringFrom("2025-07-24"),
		Message:        ticker + " dropped",
	}
}

func TestRecordRunAndRecentRuns(t *testing.T) {
	rec := testRecorder(t)
	ctx := context.Background()

	run := &RunSummary{
		RunDate:        "2025-07-28",
		GeneratedAt:    "2025-07-28 12:00 UTC",
		ItemCount:      42,
		AnnotatedCount: 40,
		AlertCount:     2,
	}
	alerts := []models.Alert{
		sampleAlert("TSLY", models.AlertDividendDropVs1W, -20.0),
		sampleAlert("NVDY", models.AlertDividendDropVs1M, -18.5),
	}

	id, err := rec.RecordRun(ctx, run, alerts)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == 0 || run.ID != id {
		t.Errorf("run id = %d, summary id = %d", id, run.ID)
	}

	runs, err := rec.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentRuns returned %d", len(runs))
	}
	got := runs[0]
	if got.RunDate != "2025-07-28" || got.ItemCount != 42 || got.AnnotatedCount != 40 || got.AlertCount != 2 {
		t.Errorf("run roundtrip mismatch: %+v", got)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	rec := testRecorder(t)
	ctx := context.Background()

	for _, date := range []string{"2025-07-26", "2025-07-27", "2025-07-28"} {
		if _, err := rec.RecordRun(ctx, &RunSummary{RunDate: date, GeneratedAt: date + " 12:00 UTC"}, nil); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := rec.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].RunDate != "2025-07-28" || runs[1].RunDate != "2025-07-27" {
		t.Errorf("RecentRuns order: %+v", runs)
	}
}

func TestAlertHistoryFilters(t *testing.T) {
	rec := testRecorder(t)
	ctx := context.Background()

	_, err := rec.RecordRun(ctx, &RunSummary{RunDate: "2025-07-28", GeneratedAt: "2025-07-28 12:00 UTC"}, []models.Alert{
		sampleAlert("TSLY", models.AlertDividendDropVs1W, -20.0),
		sampleAlert("TSLY", models.AlertDividendDropVs1M, -30.0),
		sampleAlert("NVDY", models.AlertDividendDropVs1W, -16.0),
	})
	if err != nil {
		t.Fatal(err)
	}

	all, err := rec.AlertHistory(ctx, AlertFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered history = %d rows", len(all))
	}

	tsly, err := rec.AlertHistory(ctx, AlertFilter{Ticker: "tsly"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tsly) != 2 {
		t.Fatalf("ticker filter = %d rows, want 2", len(tsly))
	}

	weekly, err := rec.AlertHistory(ctx, AlertFilter{Type: string(models.AlertDividendDropVs1W)})
	if err != nil {
		t.Fatal(err)
	}
	if len(weekly) != 2 {
		t.Fatalf("type filter = %d rows, want 2", len(weekly))
	}
	for _, r := range weekly {
		if r.RunDate != "2025-07-28" {
			t.Errorf("run date join broken: %+v", r)
		}
	}
}

func TestRecordRunDuplicateAlertIgnored(t *testing.T) {
	rec := testRecorder(t)
	ctx := context.Background()

	dup := sampleAlert("TSLY", models.AlertDividendDropVs1W, -20.0)
	if _, err := rec.RecordRun(ctx, &RunSummary{RunDate: "2025-07-28", GeneratedAt: "x"}, []models.Alert{dup, dup}); err != nil {
		t.Fatalf("duplicate within a run must not fail: %v", err)
	}

	rows, err := rec.AlertHistory(ctx, AlertFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("duplicate alert persisted %d rows, want 1", len(rows))
	}
}
