package collect

import (
	"strings"

	"weekly-etf-dashboard/pkg/utils"
)

// lowerHeaders normalizes raw header cell texts for substring matching.
func lowerHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = strings.ToLower(utils.NormSpace(h))
	}
	return out
}

// headerIndex returns the index of the first header containing any of
// the needles, or -1. Issuer tables never agree on exact header text, so
// all matching is substring based.
func headerIndex(headers []string, needles ...string) int {
	for i, h := range headers {
		for _, n := range needles {
			if strings.Contains(h, n) {
				return i
			}
		}
	}
	return -1
}

// cellAt returns the normalized cell at index i, or "" when i is -1 or
// out of range.
func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return utils.NormSpace(cells[i])
}

// parseDistRow maps one distribution-table data row onto a
// DistributionInfo using pre-resolved column indexes. Unparseable cells
// leave their field null.
func parseDistRow(url string, cells []string, iDecl, iEx, iRec, iPay, iAmt int) DistributionInfo {
	info := DistributionInfo{SourceURL: url}
	if s := cellAt(cells, iAmt); s != "" {
		info.DistributionPerShare, _ = utils.ParseDecimal("distribution_per_share", s)
	}
	if s := cellAt(cells, iDecl); s != "" {
		info.DeclarationDate, _ = utils.ParseDateISO("declaration_date", s)
	}
	if s := cellAt(cells, iEx); s != "" {
		info.ExDividendDate, _ = utils.ParseDateISO("ex_dividend_date", s)
	}
	if s := cellAt(cells, iRec); s != "" {
		info.RecordDate, _ = utils.ParseDateISO("record_date", s)
	}
	if s := cellAt(cells, iPay); s != "" {
		info.PayDate, _ = utils.ParseDateISO("pay_date", s)
	}
	return info
}
