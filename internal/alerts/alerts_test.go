package alerts

import (
	"testing"

	"github.com/guregu/null/v6"

	"weekly-etf-dashboard/internal/models"
)

func itemWithDrops(ticker string, w, m null.Float) models.SnapshotRecord {
	return models.SnapshotRecord{
		Ticker:         ticker,
		Frequency:      models.FrequencyWeekly,
		ExDividendDate: null.StringFrom("2025-07-24"),
		DistChgEx1WPct: w,
		DistChgEx1MPct: m,
	}
}

func TestScanThresholdIsInclusive(t *testing.T) {
	gen := NewGenerator(DefaultDropPct)
	emitted := gen.Scan([]models.SnapshotRecord{
		itemWithDrops("EXACT", null.FloatFrom(-15.0), null.Float{}),
		itemWithDrops("NEAR", null.FloatFrom(-14.99), null.Float{}),
		itemWithDrops("DEEP", null.FloatFrom(-40.0), null.Float{}),
	})

	if len(emitted) != 2 {
		t.Fatalf("emitted %d alerts, want 2", len(emitted))
	}
	if emitted[0].Ticker != "EXACT" || emitted[1].Ticker != "DEEP" {
		t.Errorf("wrong tickers fired: %+v", emitted)
	}
	if emitted[0].Type != models.AlertDividendDropVs1W {
		t.Errorf("type = %s, want %s", emitted[0].Type, models.AlertDividendDropVs1W)
	}
}

func TestScanBothTypesCanFireForOneTicker(t *testing.T) {
	gen := NewGenerator(-15.0)
	emitted := gen.Scan([]models.SnapshotRecord{
		itemWithDrops("BOTH", null.FloatFrom(-20.0), null.FloatFrom(-35.0)),
	})

	if len(emitted) != 2 {
		t.Fatalf("emitted %d alerts, want 2", len(emitted))
	}
	if emitted[0].Type != models.AlertDividendDropVs1W || emitted[1].Type != models.AlertDividendDropVs1M {
		t.Errorf("types = %s, %s", emitted[0].Type, emitted[1].Type)
	}
	if emitted[1].Pct != -35.0 {
		t.Errorf("pct = %v, want -35.0", emitted[1].Pct)
	}
}

func TestScanNullChangesNeverFire(t *testing.T) {
	gen := NewGenerator(-15.0)
	emitted := gen.Scan([]models.SnapshotRecord{
		itemWithDrops("NULLS", null.Float{}, null.Float{}),
	})
	if len(emitted) != 0 {
		t.Fatalf("null changes fired %d alerts", len(emitted))
	}
}

func TestScanIsIdempotentWithinARun(t *testing.T) {
	items := []models.SnapshotRecord{
		itemWithDrops("TSLY", null.FloatFrom(-20.0), null.Float{}),
	}
	gen := NewGenerator(-15.0)

	first := gen.Scan(items)
	second := gen.Scan(items)

	if len(first) != 1 {
		t.Fatalf("first scan emitted %d", len(first))
	}
	if len(second) != 0 {
		t.Fatalf("second scan must emit nothing, got %d", len(second))
	}
	if len(gen.Alerts()) != 1 {
		t.Fatalf("generator holds %d alerts, want 1", len(gen.Alerts()))
	}
}

func TestScanMessageAndRounding(t *testing.T) {
	gen := NewGenerator(-15.0)
	emitted := gen.Scan([]models.SnapshotRecord{
		itemWithDrops("TSLY", null.FloatFrom(-20.1234), null.Float{}),
	})
	if len(emitted) != 1 {
		t.Fatal("expected one alert")
	}
	a := emitted[0]
	if a.Pct != -20.12 {
		t.Errorf("pct = %v, want -20.12", a.Pct)
	}
	want := "TSLY distribution down -20.12% vs prior ex-div week"
	if a.Message != want {
		t.Errorf("message = %q, want %q", a.Message, want)
	}
	if a.ExDividendDate.String != "2025-07-24" {
		t.Errorf("ex date = %v", a.ExDividendDate)
	}
}

func TestArtifactEmptyAlertsIsNotNull(t *testing.T) {
	gen := NewGenerator(-15.0)
	art := gen.Artifact("2025-07-28 12:00 UTC")
	if art.Alerts == nil {
		t.Error("alerts must serialize as [], not null")
	}
	if art.ThresholdDropPct != -15.0 {
		t.Errorf("threshold = %v", art.ThresholdDropPct)
	}
}
