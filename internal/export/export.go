// Package export writes snapshot records to CSV for spreadsheet use.
package export

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/guregu/null/v6"

	"weekly-etf-dashboard/internal/models"
)

// csvRow flattens a snapshot record for CSV output. Null fields become
// empty cells.
type csvRow struct {
	Ticker               string `csv:"ticker"`
	Name                 string `csv:"name"`
	Issuer               string `csv:"issuer"`
	ReferenceAsset       string `csv:"reference_asset"`
	Frequency            string `csv:"frequency"`
	DistributionPerShare string `csv:"distribution_per_share"`
	DeclarationDate      string `csv:"declaration_date"`
	ExDividendDate       string `csv:"ex_dividend_date"`
	RecordDate           string `csv:"record_date"`
	PayDate              string `csv:"pay_date"`
	SharePrice           string `csv:"share_price"`
	NAVOfficial          string `csv:"nav_official"`
	DivPctPerShare       string `csv:"div_pct_per_share"`
	PriceChgEx1WPct      string `csv:"price_chg_ex_1w_pct"`
	PriceChgEx1MPct      string `csv:"price_chg_ex_1m_pct"`
	DistChgEx1WPct       string `csv:"dist_chg_ex_1w_pct"`
	DistChgEx1MPct       string `csv:"dist_chg_ex_1m_pct"`
	NAVChgEx1WPct        string `csv:"nav_chg_ex_1w_pct"`
	NAVChgEx1MPct        string `csv:"nav_chg_ex_1m_pct"`
	DaysSinceExDiv       string `csv:"days_since_ex_div"`
	DistSum8W            string `csv:"dist_sum_8w"`
	DistSlope8W          string `csv:"dist_slope_8w"`
	DistStabilityScore   string `csv:"dist_stability_score"`
	Notes                string `csv:"notes"`
}

func cellFloat(f null.Float) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

func cellInt(i null.Int) string {
	if !i.Valid {
		return ""
	}
	return strconv.FormatInt(i.Int64, 10)
}

func toRow(rec *models.SnapshotRecord) csvRow {
	return csvRow{
		Ticker:               rec.Ticker,
		Name:                 rec.Name.ValueOrZero(),
		Issuer:               rec.Issuer,
		ReferenceAsset:       rec.ReferenceAsset.ValueOrZero(),
		Frequency:            string(rec.Frequency),
		DistributionPerShare: cellFloat(rec.DistributionPerShare),
		DeclarationDate:      rec.DeclarationDate.ValueOrZero(),
		ExDividendDate:       rec.ExDividendDate.ValueOrZero(),
		RecordDate:           rec.RecordDate.ValueOrZero(),
		PayDate:              rec.PayDate.ValueOrZero(),
		SharePrice:           cellFloat(rec.SharePrice),
		NAVOfficial:          cellFloat(rec.NAVOfficial),
		DivPctPerShare:       cellFloat(rec.DivPctPerShare),
		PriceChgEx1WPct:      cellFloat(rec.PriceChgEx1WPct),
		PriceChgEx1MPct:      cellFloat(rec.PriceChgEx1MPct),
		DistChgEx1WPct:       cellFloat(rec.DistChgEx1WPct),
		DistChgEx1MPct:       cellFloat(rec.DistChgEx1MPct),
		NAVChgEx1WPct:        cellFloat(rec.NAVChgEx1WPct),
		NAVChgEx1MPct:        cellFloat(rec.NAVChgEx1MPct),
		DaysSinceExDiv:       cellInt(rec.DaysSinceExDiv),
		DistSum8W:            cellFloat(rec.DistSum8W),
		DistSlope8W:          cellFloat(rec.DistSlope8W),
		DistStabilityScore:   cellFloat(rec.DistStabilityScore),
		Notes:                rec.Notes,
	}
}

// WriteCSV writes the records as CSV with a header row.
func WriteCSV(w io.Writer, items []models.SnapshotRecord) error {
	rows := make([]csvRow, len(items))
	for i := range items {
		rows[i] = toRow(&items[i])
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("marshaling csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the records to a CSV file.
func WriteCSVFile(path string, items []models.SnapshotRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(f, items)
}
