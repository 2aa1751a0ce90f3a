package compare

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"weekly-etf-dashboard/internal/models"
)

// Eight weekly observations for one ticker, matching an eight-week run
// of history snapshots taken on the ex-dividend day itself.
var weeklyDists = []struct {
	day  string
	dist float64
}{
	{"2025-06-05", 0.30},
	{"2025-06-12", 0.30},
	{"2025-06-19", 0.29},
	{"2025-06-26", 0.25},
	{"2025-07-03", 0.24},
	{"2025-07-10", 0.24},
	{"2025-07-17", 0.20},
	{"2025-07-24", 0.18},
}

func weeklyHistory(ticker string) []models.SnapshotBatch {
	batches := make([]models.SnapshotBatch, 0, len(weeklyDists))
	for _, w := range weeklyDists {
		batches = append(batches, models.SnapshotBatch{
			GeneratedAt: w.day + " 12:00 UTC",
			Items: []models.SnapshotRecord{{
				Ticker:               ticker,
				Issuer:               models.IssuerYieldMax,
				Frequency:            models.FrequencyWeekly,
				DistributionPerShare: null.FloatFrom(w.dist),
				ExDividendDate:       null.StringFrom(w.day),
				SharePrice:           null.FloatFrom(10.0),
				NAVOfficial:          null.FloatFrom(9.5),
			}},
		})
	}
	return batches
}

func currentItem(ticker string) models.SnapshotRecord {
	return models.SnapshotRecord{
		Ticker:    ticker,
		Issuer:    models.IssuerYieldMax,
		Frequency: models.FrequencyWeekly,
	}
}

func approxEq(f null.Float, want float64) bool {
	return f.Valid && math.Abs(f.Float64-want) < 1e-9
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return day.UTC()
}

func TestAnnotateDecliningPayer(t *testing.T) {
	items := []models.SnapshotRecord{currentItem("TSLY")}
	history := weeklyHistory("TSLY")
	today := mustDay(t, "2025-07-28")

	engine := NewEngine()
	n := engine.Annotate(context.Background(), items, history, today)
	if n != 1 {
		t.Fatalf("Annotate returned %d, want 1", n)
	}
	rec := &items[0]

	if !rec.DaysSinceExDiv.Valid || rec.DaysSinceExDiv.Int64 != 4 {
		t.Errorf("days_since_ex_div = %v, want 4", rec.DaysSinceExDiv)
	}

	// 0.18 vs 0.20 one ex-div week back.
	if !approxEq(rec.DistChgEx1WPct, -10.0) {
		t.Errorf("dist_chg_ex_1w_pct = %v, want -10.0", rec.DistChgEx1WPct)
	}
	// 0.18 vs 0.25, 28 days back (within the +/-3 day window of 30).
	if !approxEq(rec.DistChgEx1MPct, -28.0) {
		t.Errorf("dist_chg_ex_1m_pct = %v, want -28.0", rec.DistChgEx1MPct)
	}

	if !rec.DistSum8W.Valid || rec.DistSum8W.Float64 != 2.0 {
		t.Errorf("dist_sum_8w = %v, want 2.0", rec.DistSum8W)
	}
	if !rec.DistSlope8W.Valid || rec.DistSlope8W.Float64 != -0.017143 {
		t.Errorf("dist_slope_8w = %v, want -0.017143", rec.DistSlope8W)
	}
	// mean 0.25, pstdev sqrt(0.001775), 5 cuts in 7 pairs.
	if !rec.DistStabilityScore.Valid || rec.DistStabilityScore.Float64 != 43.7 {
		t.Errorf("dist_stability_score = %v, want 43.7", rec.DistStabilityScore)
	}

	// Prices constant in the fixture, so price changes are exactly zero.
	if !rec.PriceChgEx1WPct.Valid || rec.PriceChgEx1WPct.Float64 != 0 {
		t.Errorf("price_chg_ex_1w_pct = %v, want 0", rec.PriceChgEx1WPct)
	}
	if !rec.NAVChgEx1MPct.Valid || rec.NAVChgEx1MPct.Float64 != 0 {
		t.Errorf("nav_chg_ex_1m_pct = %v, want 0", rec.NAVChgEx1MPct)
	}
}

func TestAnnotateIsDeterministicAcrossWorkerCounts(t *testing.T) {
	history := weeklyHistory("TSLY")
	today := mustDay(t, "2025-07-28")

	sequential := []models.SnapshotRecord{currentItem("TSLY")}
	NewEngine(WithWorkers(1)).Annotate(context.Background(), sequential, history, today)

	parallel := []models.SnapshotRecord{currentItem("TSLY")}
	NewEngine(WithWorkers(8)).Annotate(context.Background(), parallel, history, today)

	if sequential[0] != parallel[0] {
		t.Errorf("worker count changed the result:\n  sequential %+v\n  parallel   %+v", sequential[0], parallel[0])
	}
}

func TestAnnotateInsufficientHistoryLeavesNulls(t *testing.T) {
	items := []models.SnapshotRecord{currentItem("NEWW")}
	history := weeklyHistory("TSLY")[:1]
	today := mustDay(t, "2025-07-28")

	n := NewEngine().Annotate(context.Background(), items, history, today)
	if n != 0 {
		t.Fatalf("Annotate returned %d, want 0", n)
	}
	rec := &items[0]
	if rec.DaysSinceExDiv.Valid || rec.DistChgEx1WPct.Valid || rec.DistStabilityScore.Valid {
		t.Errorf("new ticker must keep all derived fields null: %+v", rec)
	}
}

func TestAnnotateResetsStaleDerivedFields(t *testing.T) {
	item := currentItem("NEWW")
	item.DistChgEx1WPct = null.FloatFrom(-99)
	item.DistStabilityScore = null.FloatFrom(1)
	items := []models.SnapshotRecord{item}

	NewEngine().Annotate(context.Background(), items, nil, mustDay(t, "2025-07-28"))
	if items[0].DistChgEx1WPct.Valid || items[0].DistStabilityScore.Valid {
		t.Errorf("stale derived fields must be cleared: %+v", items[0])
	}
}

func TestAnnotateNoPriorOutsideTolerance(t *testing.T) {
	// Two observations 15 days apart: neither 7 nor 30 days back matches
	// within the 3-day window.
	history := []models.SnapshotBatch{
		{GeneratedAt: "2025-07-09 12:00 UTC", Items: []models.SnapshotRecord{{
			Ticker: "GAPY", Frequency: models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(0.2),
			ExDividendDate:       null.StringFrom("2025-07-09"),
		}}},
		{GeneratedAt: "2025-07-24 12:00 UTC", Items: []models.SnapshotRecord{{
			Ticker: "GAPY", Frequency: models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(0.18),
			ExDividendDate:       null.StringFrom("2025-07-24"),
		}}},
	}
	items := []models.SnapshotRecord{currentItem("GAPY")}

	n := NewEngine().Annotate(context.Background(), items, history, mustDay(t, "2025-07-28"))
	if n != 1 {
		t.Fatalf("anchor exists, record should count as annotated")
	}
	rec := &items[0]
	if rec.DistChgEx1WPct.Valid || rec.DistChgEx1MPct.Valid {
		t.Errorf("no prior within tolerance must leave changes null: %+v", rec)
	}
	if !rec.DaysSinceExDiv.Valid || rec.DaysSinceExDiv.Int64 != 4 {
		t.Errorf("days_since_ex_div = %v, want 4", rec.DaysSinceExDiv)
	}
}

func TestAnnotateZeroPriorDistributionGuard(t *testing.T) {
	history := []models.SnapshotBatch{
		{GeneratedAt: "2025-07-17 12:00 UTC", Items: []models.SnapshotRecord{{
			Ticker: "ZERO", Frequency: models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(0),
			ExDividendDate:       null.StringFrom("2025-07-17"),
		}}},
		{GeneratedAt: "2025-07-24 12:00 UTC", Items: []models.SnapshotRecord{{
			Ticker: "ZERO", Frequency: models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(0.18),
			ExDividendDate:       null.StringFrom("2025-07-24"),
		}}},
	}
	items := []models.SnapshotRecord{currentItem("ZERO")}

	NewEngine().Annotate(context.Background(), items, history, mustDay(t, "2025-07-28"))
	if items[0].DistChgEx1WPct.Valid {
		t.Errorf("zero prior base must yield null, got %v", items[0].DistChgEx1WPct)
	}
}

func TestAnnotateFutureExDivIsNegativeDays(t *testing.T) {
	history := []models.SnapshotBatch{
		{GeneratedAt: "2025-07-24 12:00 UTC", Items: []models.SnapshotRecord{{
			Ticker: "FUTY", Frequency: models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(0.2),
			ExDividendDate:       null.StringFrom("2025-07-24"),
		}}},
		{GeneratedAt: "2025-07-28 12:00 UTC", Items: []models.SnapshotRecord{{
			Ticker: "FUTY", Frequency: models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(0.2),
			ExDividendDate:       null.StringFrom("2025-07-31"),
		}}},
	}
	items := []models.SnapshotRecord{currentItem("FUTY")}

	NewEngine().Annotate(context.Background(), items, history, mustDay(t, "2025-07-28"))
	if !items[0].DaysSinceExDiv.Valid || items[0].DaysSinceExDiv.Int64 != -3 {
		t.Errorf("scheduled future ex-div: days_since = %v, want -3", items[0].DaysSinceExDiv)
	}
}

func TestAnnotateDuplicateExDateLaterRunWins(t *testing.T) {
	// The same ex-date reported on two consecutive run days with a
	// corrected amount: the later run's value feeds the window.
	history := weeklyHistory("TSLY")
	correction := models.SnapshotBatch{
		GeneratedAt: "2025-07-25 12:00 UTC",
		Items: []models.SnapshotRecord{{
			Ticker: "TSLY", Frequency: models.FrequencyWeekly,
			DistributionPerShare: null.FloatFrom(0.19),
			ExDividendDate:       null.StringFrom("2025-07-24"),
		}},
	}
	history = append(history, correction)

	items := []models.SnapshotRecord{currentItem("TSLY")}
	NewEngine().Annotate(context.Background(), items, history, mustDay(t, "2025-07-28"))

	// Window sum picks up 0.19 in place of 0.18.
	if !items[0].DistSum8W.Valid || items[0].DistSum8W.Float64 != 2.01 {
		t.Errorf("dist_sum_8w = %v, want 2.01 after correction", items[0].DistSum8W)
	}
}

func TestAnnotateTickerSingle(t *testing.T) {
	rec := currentItem("TSLY")
	ok := NewEngine().AnnotateTicker(&rec, weeklyHistory("TSLY"), mustDay(t, "2025-07-28"))
	if !ok {
		t.Fatal("AnnotateTicker returned false")
	}
	if !rec.DistStabilityScore.Valid || rec.DistStabilityScore.Float64 != 43.7 {
		t.Errorf("score = %v, want 43.7", rec.DistStabilityScore)
	}
}
