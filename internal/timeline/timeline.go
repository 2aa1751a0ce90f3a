// Package timeline reconstructs per-ticker observation sequences from
// the history store. The builder is a pure read: it never mutates
// batches and has no side effects.
package timeline

import (
	"sort"

	"weekly-etf-dashboard/internal/models"

	apperrors "weekly-etf-dashboard/internal/errors"
)

// Builder gathers per-ticker timelines from snapshot batches.
type Builder struct{}

// NewBuilder creates a timeline builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildAll scans the batches (ascending date order, as the history store
// returns them) and collects one observation per weekly-frequency record
// per run day. Records without an ex-dividend date are still collected
// here; Qualify drops them, since they cannot anchor a comparison.
func (b *Builder) BuildAll(batches []models.SnapshotBatch) map[string][]models.TimelineEntry {
	out := make(map[string][]models.TimelineEntry)
	for i := range batches {
		runDate := batches[i].Date()
		for j := range batches[i].Items {
			it := &batches[i].Items[j]
			if !it.Frequency.IsWeekly() {
				continue
			}
			out[it.Ticker] = append(out[it.Ticker], models.TimelineEntry{
				RunDate:        runDate,
				ExDivDate:      it.ExDividendDate,
				Price:          it.Price(),
				Distribution:   it.DistributionPerShare,
				ReferenceValue: it.NAVOfficial,
			})
		}
	}
	return out
}

// Qualify sorts a ticker's observations ascending by run date
// (lexicographic ISO-date ordering), drops entries without an
// ex-dividend date, and requires at least two qualifying entries.
// Fewer is the normal steady state for newly discovered tickers and is
// reported as ErrInsufficientHistory, which callers treat as "leave all
// derived fields null", not as a failure.
func Qualify(entries []models.TimelineEntry) ([]models.TimelineEntry, error) {
	sorted := make([]models.TimelineEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RunDate < sorted[j].RunDate
	})

	qualified := sorted[:0]
	for _, e := range sorted {
		if e.ExDivDate.Valid && e.ExDivDate.String != "" {
			qualified = append(qualified, e)
		}
	}
	if len(qualified) < 2 {
		return nil, apperrors.ErrInsufficientHistory
	}
	return qualified, nil
}

// ForTicker builds and qualifies the timeline for one ticker.
func (b *Builder) ForTicker(batches []models.SnapshotBatch, ticker string) ([]models.TimelineEntry, error) {
	all := b.BuildAll(batches)
	entries, ok := all[ticker]
	if !ok {
		return nil, apperrors.ErrInsufficientHistory
	}
	return Qualify(entries)
}
