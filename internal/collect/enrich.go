package collect

import (
	"strings"

	"github.com/guregu/null/v6"

	"weekly-etf-dashboard/internal/models"
	"weekly-etf-dashboard/pkg/utils"
)

// Discovery is a fund found on an issuer site before enrichment.
type Discovery struct {
	Ticker         string
	Issuer         string
	Name           null.String
	ReferenceAsset null.String
	Notes          string
}

// Dedupe keeps the first occurrence per (upper-cased ticker, issuer)
// pair, preserving order. Earlier sources win, so discovery ordering is
// a priority ordering.
func Dedupe(items []Discovery) []Discovery {
	type key struct{ ticker, issuer string }
	seen := make(map[key]struct{}, len(items))
	out := make([]Discovery, 0, len(items))
	for _, it := range items {
		t := utils.NormSpace(it.Ticker)
		if t == "" {
			continue
		}
		t = strings.ToUpper(t)
		k := key{t, utils.NormSpace(it.Issuer)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		it.Ticker = t
		out = append(out, it)
	}
	return out
}

// DistributionInfo is the per-ticker enrichment parsed from an issuer
// distribution table: the latest payout amount and its calendar dates.
type DistributionInfo struct {
	DistributionPerShare null.Float
	DeclarationDate      null.String
	ExDividendDate       null.String
	RecordDate           null.String
	PayDate              null.String
	SourceURL            string
}

// Empty reports whether no useful field was parsed.
func (d *DistributionInfo) Empty() bool {
	return !d.DistributionPerShare.Valid &&
		!d.DeclarationDate.Valid &&
		!d.ExDividendDate.Valid &&
		!d.RecordDate.Valid &&
		!d.PayDate.Valid
}

// ApplyTo copies the known fields onto a snapshot record and appends the
// source URL to its notes. Null fields never overwrite.
func (d *DistributionInfo) ApplyTo(rec *models.SnapshotRecord) {
	if d.DistributionPerShare.Valid {
		rec.DistributionPerShare = d.DistributionPerShare
	}
	if d.DeclarationDate.Valid {
		rec.DeclarationDate = d.DeclarationDate
	}
	if d.ExDividendDate.Valid {
		rec.ExDividendDate = d.ExDividendDate
	}
	if d.RecordDate.Valid {
		rec.RecordDate = d.RecordDate
	}
	if d.PayDate.Valid {
		rec.PayDate = d.PayDate
	}
	if d.SourceURL != "" {
		if rec.Notes != "" {
			rec.Notes += " | "
		}
		rec.Notes += d.SourceURL
	}
}
