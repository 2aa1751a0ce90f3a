// Package alerts generates distribution-drop alerts from annotated
// snapshot records.
package alerts

import (
	"fmt"

	"weekly-etf-dashboard/internal/models"
	"weekly-etf-dashboard/pkg/utils"
)

// DefaultDropPct is the default drop threshold: a 15% or greater
// decline fires an alert.
const DefaultDropPct = -15.0

// Generator emits drop alerts from annotated records. It remembers the
// identity of every alert it has emitted, so scanning the same record
// set twice in one run cannot produce duplicates.
type Generator struct {
	threshold float64
	seen      map[string]struct{}
	alerts    []models.Alert
}

// NewGenerator creates a generator with the given drop threshold
// (negative; a change <= threshold fires).
func NewGenerator(threshold float64) *Generator {
	return &Generator{
		threshold: threshold,
		seen:      make(map[string]struct{}),
	}
}

// Threshold returns the configured drop threshold.
func (g *Generator) Threshold() float64 {
	return g.threshold
}

// Scan checks every record and returns the newly emitted alerts. A
// ticker may fire zero, one, or both alert types in the same run. The
// boundary is inclusive: a change exactly at the threshold fires.
func (g *Generator) Scan(items []models.SnapshotRecord) []models.Alert {
	var emitted []models.Alert
	for i := range items {
		it := &items[i]
		if it.DistChgEx1WPct.Valid && it.DistChgEx1WPct.Float64 <= g.threshold {
			emitted = g.emit(emitted, it, models.AlertDividendDropVs1W, it.DistChgEx1WPct.Float64, "week")
		}
		if it.DistChgEx1MPct.Valid && it.DistChgEx1MPct.Float64 <= g.threshold {
			emitted = g.emit(emitted, it, models.AlertDividendDropVs1M, it.DistChgEx1MPct.Float64, "month")
		}
	}
	g.alerts = append(g.alerts, emitted...)
	return emitted
}

func (g *Generator) emit(out []models.Alert, rec *models.SnapshotRecord, typ models.AlertType, pct float64, period string) []models.Alert {
	alert := models.Alert{
		Ticker:         rec.Ticker,
		Type:           typ,
		Pct:            utils.RoundTo(pct, 2),
		ExDividendDate: rec.ExDividendDate,
		Message:        fmt.Sprintf("%s distribution down %.2f%% vs prior ex-div %s", rec.Ticker, pct, period),
	}
	key := alert.Key()
	if _, dup := g.seen[key]; dup {
		return out
	}
	g.seen[key] = struct{}{}
	return append(out, alert)
}

// Alerts returns every alert emitted so far, deduplicated by
// (ticker, type, ex_dividend_date).
func (g *Generator) Alerts() []models.Alert {
	return g.alerts
}

// Artifact builds the persisted alerts document for this run.
func (g *Generator) Artifact(generatedAt string) *models.AlertsArtifact {
	alerts := g.alerts
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return &models.AlertsArtifact{
		GeneratedAt:      generatedAt,
		ThresholdDropPct: g.threshold,
		Alerts:           alerts,
	}
}
