package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"

	apperrors "weekly-etf-dashboard/internal/errors"
	"weekly-etf-dashboard/internal/models"
)

func testBatch(generatedAt, ticker string, dist float64) *models.SnapshotBatch {
	return &models.SnapshotBatch{
		GeneratedAt: generatedAt,
		Items: []models.SnapshotRecord{{
			Ticker:               ticker,
			Issuer:               models.IssuerYieldMax,
			Frequency:            models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(dist),
		}},
	}
}

func TestWriteAndLoadRoundtrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history"), zerolog.Nop())

	for _, day := range []string{"2025-07-10", "2025-07-17", "2025-07-24"} {
		if _, err := store.WriteToday(testBatch(day+" 12:00 UTC", "TSLY", 0.2)); err != nil {
			t.Fatalf("WriteToday(%s): %v", day, err)
		}
	}

	batches, err := store.Load(45)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("Load returned %d batches, want 3", len(batches))
	}
	for i, want := range []string{"2025-07-10", "2025-07-17", "2025-07-24"} {
		if batches[i].Date() != want {
			t.Errorf("batch %d date = %s, want %s (ascending order)", i, batches[i].Date(), want)
		}
	}
}

func TestLoadTrimsToLookback(t *testing.T) {
	store := NewStore(t.TempDir(), zerolog.Nop())
	days := []string{"2025-07-01", "2025-07-02", "2025-07-03", "2025-07-04"}
	for _, day := range days {
		if _, err := store.WriteToday(testBatch(day+" 12:00 UTC", "TSLY", 0.2)); err != nil {
			t.Fatal(err)
		}
	}

	batches, err := store.Load(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 2 {
		t.Fatalf("Load(2) returned %d batches", len(batches))
	}
	if batches[0].Date() != "2025-07-03" || batches[1].Date() != "2025-07-04" {
		t.Errorf("Load(2) kept %s, %s; want the most recent days", batches[0].Date(), batches[1].Date())
	}
}

func TestLoadMissingDirIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"), zerolog.Nop())
	batches, err := store.Load(45)
	if err != nil {
		t.Fatalf("missing dir should not error, got %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("missing dir should load zero batches, got %d", len(batches))
	}
}

func TestLoadSkipsCorruptBatch(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zerolog.Nop())

	if _, err := store.WriteToday(testBatch("2025-07-24 12:00 UTC", "TSLY", 0.2)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2025-07-23.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	batches, err := store.Load(45)
	if err != nil {
		t.Fatalf("corrupt batch must not fail the load: %v", err)
	}
	if len(batches) != 1 || batches[0].Date() != "2025-07-24" {
		t.Fatalf("expected only the good batch, got %d", len(batches))
	}
}

func TestRerunSameDayReplaces(t *testing.T) {
	store := NewStore(t.TempDir(), zerolog.Nop())
	if _, err := store.WriteToday(testBatch("2025-07-24 09:00 UTC", "TSLY", 0.2)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.WriteToday(testBatch("2025-07-24 15:00 UTC", "TSLY", 0.25)); err != nil {
		t.Fatal(err)
	}

	batches, err := store.Load(45)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 {
		t.Fatalf("rerun must replace, not append: got %d batches", len(batches))
	}
	if got := batches[0].Items[0].DistributionPerShare.Float64; got != 0.25 {
		t.Errorf("rerun kept stale value %v", got)
	}
}

func TestLoadDay(t *testing.T) {
	store := NewStore(t.TempDir(), zerolog.Nop())
	if _, err := store.WriteToday(testBatch("2025-07-24 12:00 UTC", "TSLY", 0.2)); err != nil {
		t.Fatal(err)
	}

	batch, err := store.LoadDay("2025-07-24")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if batch.Items[0].Ticker != "TSLY" {
		t.Errorf("LoadDay returned wrong batch")
	}

	if _, err := store.LoadDay("1999-01-01"); !apperrors.Is(err, apperrors.ErrNoSnapshot) {
		t.Errorf("LoadDay missing day: got %v, want ErrNoSnapshot", err)
	}
}

func TestDays(t *testing.T) {
	store := NewStore(t.TempDir(), zerolog.Nop())
	for _, day := range []string{"2025-07-24", "2025-07-10", "2025-07-17"} {
		if _, err := store.WriteToday(testBatch(day+" 12:00 UTC", "TSLY", 0.2)); err != nil {
			t.Fatal(err)
		}
	}
	days, err := store.Days()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2025-07-10", "2025-07-17", "2025-07-24"}
	if len(days) != len(want) {
		t.Fatalf("Days returned %v", days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("Days[%d] = %s, want %s", i, days[i], want[i])
		}
	}
}
