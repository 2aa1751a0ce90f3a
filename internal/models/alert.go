package models

import (
	"fmt"

	"github.com/guregu/null/v6"
)

// AlertType identifies which comparison period triggered an alert.
type AlertType string

const (
	AlertDividendDropVs1W AlertType = "DIVIDEND_DROP_VS_1W"
	AlertDividendDropVs1M AlertType = "DIVIDEND_DROP_VS_1M"
)

// Alert is a distribution-drop alert for a single ticker. Alerts are
// regenerated every run from that run's annotated records and are never
// written back into the history store.
type Alert struct {
	Ticker         string      `json:"ticker"`
	Type           AlertType   `json:"type"`
	Pct            float64     `json:"pct"`
	ExDividendDate null.String `json:"ex_dividend_date"`
	Message        string      `json:"message"`
}

// Key returns the identity used to deduplicate alerts within a run.
func (a *Alert) Key() string {
	return fmt.Sprintf("%s|%s|%s", a.Ticker, a.Type, a.ExDividendDate.ValueOrZero())
}

// AlertsArtifact is the persisted alerts document for one run.
type AlertsArtifact struct {
	GeneratedAt      string  `json:"generated_at"`
	ThresholdDropPct float64 `json:"threshold_drop_pct"`
	Alerts           []Alert `json:"alerts"`
}
