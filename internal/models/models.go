// Package models provides domain models for the weekly ETF dashboard.
package models

import (
	"strings"

	"github.com/guregu/null/v6"
)

// Frequency represents a fund's distribution cadence.
type Frequency string

const (
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
)

// IsWeekly reports whether the frequency is weekly, case-insensitively.
// Issuer sites are inconsistent about capitalization.
func (f Frequency) IsWeekly() bool {
	return strings.EqualFold(string(f), string(FrequencyWeekly))
}

// Issuer labels for discovered funds.
const (
	IssuerYieldMax      = "YieldMax"
	IssuerRoundhill     = "Roundhill"
	IssuerGraniteShares = "GraniteShares"
	IssuerOther         = "Other"
)

// SnapshotRecord is the normalized per-fund data unit for one run.
// Optional fields use null types so the JSON artifacts carry explicit
// nulls; consumers treat every derived field as optional.
type SnapshotRecord struct {
	Ticker         string      `json:"ticker"`
	Name           null.String `json:"name"`
	Issuer         string      `json:"issuer"`
	ReferenceAsset null.String `json:"reference_asset"`

	DistributionPerShare null.Float  `json:"distribution_per_share"`
	Frequency            Frequency   `json:"frequency"`
	DeclarationDate      null.String `json:"declaration_date"`
	ExDividendDate       null.String `json:"ex_dividend_date"`
	RecordDate           null.String `json:"record_date"`
	PayDate              null.String `json:"pay_date"`

	NAVOfficial null.Float `json:"nav_official"`

	// price_proxy is kept for frontend compatibility; share_price is the
	// canonical field. Both carry the same quote when one is known.
	PriceProxy     null.Float `json:"price_proxy"`
	SharePrice     null.Float `json:"share_price"`
	DivPctPerShare null.Float `json:"div_pct_per_share"`

	// Derived fields, recomputed from scratch every run by the
	// comparison engine. Never persisted except through the history
	// store's raw fields.
	PriceChgEx1WPct    null.Float `json:"price_chg_ex_1w_pct"`
	PriceChgEx1MPct    null.Float `json:"price_chg_ex_1m_pct"`
	DistChgEx1WPct     null.Float `json:"dist_chg_ex_1w_pct"`
	DistChgEx1MPct     null.Float `json:"dist_chg_ex_1m_pct"`
	NAVChgEx1WPct      null.Float `json:"nav_chg_ex_1w_pct"`
	NAVChgEx1MPct      null.Float `json:"nav_chg_ex_1m_pct"`
	DaysSinceExDiv     null.Int   `json:"days_since_ex_div"`
	DistSum8W          null.Float `json:"dist_sum_8w"`
	DistSlope8W        null.Float `json:"dist_slope_8w"`
	DistStabilityScore null.Float `json:"dist_stability_score"`

	Notes string `json:"notes"`

	// Frontend compatibility aliases, mirrored from the canonical fields
	// by SyncAliases before an artifact is written. The dashboard frontend
	// predates the snake_case schema and still reads these.
	DistributionPerShareAlias null.Float  `json:"distributionPerShare"`
	DeclarationAlias          null.String `json:"declaration"`
	ExDividendAlias           null.String `json:"exDividend"`
	RecordAlias               null.String `json:"record"`
	PayAlias                  null.String `json:"pay"`
	PriceAlias                null.Float  `json:"price"`
}

// SyncAliases copies the canonical fields into the frontend alias
// fields. Call after the record is final for the run.
func (r *SnapshotRecord) SyncAliases() {
	r.DistributionPerShareAlias = r.DistributionPerShare
	r.DeclarationAlias = r.DeclarationDate
	r.ExDividendAlias = r.ExDividendDate
	r.RecordAlias = r.RecordDate
	r.PayAlias = r.PayDate
	r.PriceAlias = r.SharePrice
}

// ResetDerived clears every derived field. Called before annotation so a
// re-run never inherits stale values from a loaded artifact.
func (r *SnapshotRecord) ResetDerived() {
	r.PriceChgEx1WPct = null.Float{}
	r.PriceChgEx1MPct = null.Float{}
	r.DistChgEx1WPct = null.Float{}
	r.DistChgEx1MPct = null.Float{}
	r.NAVChgEx1WPct = null.Float{}
	r.NAVChgEx1MPct = null.Float{}
	r.DaysSinceExDiv = null.Int{}
	r.DistSum8W = null.Float{}
	r.DistSlope8W = null.Float{}
	r.DistStabilityScore = null.Float{}
}

// Price returns the best available market price for comparisons:
// share_price when set, price_proxy otherwise.
func (r *SnapshotRecord) Price() null.Float {
	if r.SharePrice.Valid {
		return r.SharePrice
	}
	return r.PriceProxy
}

// SnapshotBatch is one day's full set of snapshot records, the atomic
// unit of the history store. Immutable once written.
type SnapshotBatch struct {
	GeneratedAt string           `json:"generated_at"`
	Items       []SnapshotRecord `json:"items"`
}

// Date returns the calendar-day key of the batch: the first ten bytes of
// generated_at, which is an ISO date prefix for every writer we accept.
func (b *SnapshotBatch) Date() string {
	if len(b.GeneratedAt) < 10 {
		return b.GeneratedAt
	}
	return b.GeneratedAt[:10]
}

// TimelineEntry is one per-ticker observation reconstructed from the
// history store. Ephemeral, rebuilt every run.
type TimelineEntry struct {
	RunDate        string
	ExDivDate      null.String
	Price          null.Float
	Distribution   null.Float
	ReferenceValue null.Float
}
