package timeline

import (
	"testing"

	"github.com/guregu/null/v6"

	apperrors "weekly-etf-dashboard/internal/errors"
	"weekly-etf-dashboard/internal/models"
)

func batch(day string, items ...models.SnapshotRecord) models.SnapshotBatch {
	return models.SnapshotBatch{GeneratedAt: day + " 12:00 UTC", Items: items}
}

func weeklyRec(ticker, exDiv string, dist float64) models.SnapshotRecord {
	rec := models.SnapshotRecord{
		Ticker:               ticker,
		Frequency:            models.FrequencyWeekly,
		DistributionPerShare: null.FloatFrom(dist),
	}
	if exDiv != "" {
		rec.ExDividendDate = null.StringFrom(exDiv)
	}
	return rec
}

func TestBuildAllFiltersNonWeekly(t *testing.T) {
	monthly := weeklyRec("JEPI", "2025-07-01", 0.35)
	monthly.Frequency = models.FrequencyMonthly

	b := NewBuilder()
	all := b.BuildAll([]models.SnapshotBatch{
		batch("2025-07-24", weeklyRec("TSLY", "2025-07-24", 0.2), monthly),
	})

	if _, ok := all["JEPI"]; ok {
		t.Error("monthly fund must not enter the timeline")
	}
	if len(all["TSLY"]) != 1 {
		t.Errorf("TSLY timeline = %d entries, want 1", len(all["TSLY"]))
	}
}

func TestBuildAllIsCaseInsensitiveOnFrequency(t *testing.T) {
	rec := weeklyRec("TSLY", "2025-07-24", 0.2)
	rec.Frequency = models.Frequency("weekly")

	all := NewBuilder().BuildAll([]models.SnapshotBatch{batch("2025-07-24", rec)})
	if len(all["TSLY"]) != 1 {
		t.Error("lowercase weekly frequency must qualify")
	}
}

func TestQualifySortsAndDropsMissingExDiv(t *testing.T) {
	entries := []models.TimelineEntry{
		{RunDate: "2025-07-24", ExDivDate: null.StringFrom("2025-07-24")},
		{RunDate: "2025-07-10", ExDivDate: null.StringFrom("2025-07-10")},
		{RunDate: "2025-07-17"}, // no ex-div, must be dropped
		{RunDate: "2025-07-03", ExDivDate: null.StringFrom("2025-07-03")},
	}

	rows, err := Qualify(entries)
	if err != nil {
		t.Fatalf("Qualify: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Qualify kept %d rows, want 3", len(rows))
	}
	want := []string{"2025-07-03", "2025-07-10", "2025-07-24"}
	for i, w := range want {
		if rows[i].RunDate != w {
			t.Errorf("rows[%d].RunDate = %s, want %s", i, rows[i].RunDate, w)
		}
	}
}

func TestQualifyRequiresTwoObservations(t *testing.T) {
	_, err := Qualify([]models.TimelineEntry{
		{RunDate: "2025-07-24", ExDivDate: null.StringFrom("2025-07-24")},
	})
	if !apperrors.Is(err, apperrors.ErrInsufficientHistory) {
		t.Errorf("single observation: got %v, want ErrInsufficientHistory", err)
	}

	_, err = Qualify(nil)
	if !apperrors.Is(err, apperrors.ErrInsufficientHistory) {
		t.Errorf("empty timeline: got %v, want ErrInsufficientHistory", err)
	}
}

func TestQualifyDoesNotMutateInput(t *testing.T) {
	entries := []models.TimelineEntry{
		{RunDate: "2025-07-24", ExDivDate: null.StringFrom("2025-07-24")},
		{RunDate: "2025-07-10", ExDivDate: null.StringFrom("2025-07-10")},
	}
	if _, err := Qualify(entries); err != nil {
		t.Fatal(err)
	}
	if entries[0].RunDate != "2025-07-24" {
		t.Error("Qualify reordered the caller's slice")
	}
}

func TestForTickerUnknown(t *testing.T) {
	b := NewBuilder()
	_, err := b.ForTicker([]models.SnapshotBatch{
		batch("2025-07-24", weeklyRec("TSLY", "2025-07-24", 0.2)),
	}, "NVDY")
	if !apperrors.Is(err, apperrors.ErrInsufficientHistory) {
		t.Errorf("unknown ticker: got %v, want ErrInsufficientHistory", err)
	}
}
