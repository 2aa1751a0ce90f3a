package collect

import (
	"bytes"
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"

	"weekly-etf-dashboard/internal/models"
	"weekly-etf-dashboard/pkg/utils"
)

const roundhillListURL = "https://www.roundhillinvestments.com/weeklypay-etfs"

func roundhillFundURL(ticker string) string {
	return "https://www.roundhillinvestments.com/etf/" + strings.ToLower(ticker) + "/"
}

// WeeklyPay tickers all end in W.
var roundhillTickerRe = regexp.MustCompile(`\b[A-Z]{3,5}W\b`)

// Roundhill discovers WeeklyPay funds from the product listing page and
// enriches them from per-fund distribution tables.
type Roundhill struct {
	fetcher *Fetcher
	ua      string
	delay   time.Duration
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRoundhill creates the Roundhill source.
func NewRoundhill(fetcher *Fetcher, ua string, delay, timeout time.Duration, logger zerolog.Logger) *Roundhill {
	return &Roundhill{fetcher: fetcher, ua: ua, delay: delay, timeout: timeout, logger: logger}
}

// Discover extracts WeeklyPay tickers from the listing page text. The
// page has no stable table structure, but the ticker suffix convention
// makes a text scan reliable.
func (r *Roundhill) Discover(ctx context.Context) ([]Discovery, error) {
	body, err := r.fetcher.Get(ctx, models.IssuerRoundhill, roundhillListURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, t := range roundhillTickerRe.FindAllString(doc.Text(), -1) {
		set[t] = struct{}{}
	}
	tickers := make([]string, 0, len(set))
	for t := range set {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	items := make([]Discovery, 0, len(tickers))
	for _, t := range tickers {
		items = append(items, Discovery{
			Ticker: t,
			Issuer: models.IssuerRoundhill,
			Notes:  "Discovered via Roundhill WeeklyPay",
		})
	}
	return Dedupe(items), nil
}

// Enrich fetches each fund page and parses its latest distribution row,
// preferring the Distribution History table (which carries the amount)
// over the Distribution Calendar (dates only).
func (r *Roundhill) Enrich(tickers []string) map[string]DistributionInfo {
	out := make(map[string]DistributionInfo, len(tickers))
	for _, t := range tickers {
		info := r.fundLatest(t)
		if !info.Empty() {
			out[t] = info
		}
	}
	return out
}

func (r *Roundhill) fundLatest(ticker string) DistributionInfo {
	url := roundhillFundURL(ticker)
	var history, calendar DistributionInfo

	c := colly.NewCollector(colly.UserAgent(r.ua))
	c.SetRequestTimeout(r.timeout)
	c.Limit(&colly.LimitRule{
		DomainGlob: "*roundhillinvestments.com*",
		Delay:      r.delay,
	})

	c.OnHTML("h1, h2, h3, h4, h5", func(e *colly.HTMLElement) {
		heading := strings.ToLower(utils.NormSpace(e.Text))
		isHistory := strings.Contains(heading, "distribution history")
		isCalendar := strings.Contains(heading, "distribution calendar")
		if !isHistory && !isCalendar {
			return
		}
		if isHistory && !history.Empty() || isCalendar && !calendar.Empty() {
			return
		}

		cells := firstDataRowAfter(e.DOM)
		if cells == nil {
			return
		}
		// Column convention: Declaration, Ex Date, Record Date, Pay Date,
		// then Amount Paid on the history table.
		info := parseDistRow(url, cells, 0, 1, 2, 3, 4)
		if isHistory {
			history = info
		} else {
			calendar = info
		}
	})
	c.OnError(func(resp *colly.Response, err error) {
		r.logger.Debug().Str("ticker", ticker).Str("url", url).Err(err).Msg("Roundhill fund page fetch failed")
	})

	if err := c.Visit(url); err != nil {
		r.logger.Debug().Str("ticker", ticker).Err(err).Msg("Roundhill fund page visit failed")
		return DistributionInfo{}
	}

	if history.DistributionPerShare.Valid || history.ExDividendDate.Valid || history.PayDate.Valid {
		return history
	}
	if calendar.ExDividendDate.Valid || calendar.PayDate.Valid {
		// Calendar rows carry no amount column; whatever landed there is
		// noise from a trailing cell.
		calendar.DistributionPerShare = null.Float{}
		return calendar
	}
	return DistributionInfo{}
}

// firstDataRowAfter locates the first table following a heading and
// returns the cell texts of its first data row.
func firstDataRowAfter(heading *goquery.Selection) []string {
	tbl := heading.NextAllFiltered("table").First()
	if tbl.Length() == 0 {
		tbl = heading.NextAll().Find("table").First()
	}
	if tbl.Length() == 0 {
		return nil
	}
	rows := tbl.Find("tr")
	if rows.Length() < 2 {
		return nil
	}
	var cells []string
	rows.Eq(1).Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, utils.NormSpace(cell.Text()))
	})
	return cells
}
