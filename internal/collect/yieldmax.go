package collect

import (
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"

	"weekly-etf-dashboard/internal/models"
)

const yieldMaxListURL = "https://yieldmaxetfs.com/our-etfs/"

func yieldMaxFundURL(ticker string) string {
	return yieldMaxListURL + strings.ToLower(ticker) + "/"
}

// YieldMax discovers weekly funds from the Our ETFs listing table and
// enriches them from per-fund distribution tables.
type YieldMax struct {
	ua      string
	delay   time.Duration
	timeout time.Duration
	logger  zerolog.Logger
}

// NewYieldMax creates the YieldMax source.
func NewYieldMax(ua string, delay, timeout time.Duration, logger zerolog.Logger) *YieldMax {
	return &YieldMax{ua: ua, delay: delay, timeout: timeout, logger: logger}
}

// newCollector returns a fresh collector per page visit. Handlers
// registered on a collector accumulate, so collectors are never reused
// across pages.
func (y *YieldMax) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(y.ua))
	c.SetRequestTimeout(y.timeout)
	c.Limit(&colly.LimitRule{
		DomainGlob: "*yieldmaxetfs.com*",
		Delay:      y.delay,
	})
	return c
}

// Discover scans the listing page for tables carrying ticker and
// distribution-frequency columns and keeps the weekly rows.
func (y *YieldMax) Discover() ([]Discovery, error) {
	var items []Discovery

	c := y.newCollector()
	c.OnHTML("table", func(e *colly.HTMLElement) {
		headers := lowerHeaders(e.ChildTexts("th"))
		if len(headers) == 0 {
			return
		}
		blob := strings.Join(headers, " ")
		if !strings.Contains(blob, "ticker") || !strings.Contains(blob, "distribution") {
			return
		}

		iTicker := headerIndex(headers, "ticker")
		iName := headerIndex(headers, "etf")
		iRef := headerIndex(headers, "reference")
		iFreq := headerIndex(headers, "frequency")
		if iTicker < 0 || iFreq < 0 {
			return
		}

		e.ForEach("tr", func(_ int, row *colly.HTMLElement) {
			cells := row.ChildTexts("td")
			if len(cells) == 0 {
				return
			}
			ticker := cellAt(cells, iTicker)
			if ticker == "" || !strings.EqualFold(cellAt(cells, iFreq), "weekly") {
				return
			}
			d := Discovery{
				Ticker: ticker,
				Issuer: models.IssuerYieldMax,
				Notes:  "Discovered via YieldMax Our ETFs",
			}
			if name := cellAt(cells, iName); name != "" {
				d.Name = null.StringFrom(name)
			}
			if ref := cellAt(cells, iRef); ref != "" {
				d.ReferenceAsset = null.StringFrom(ref)
			}
			items = append(items, d)
		})
	})
	c.OnError(func(r *colly.Response, err error) {
		y.logger.Warn().Str("url", r.Request.URL.String()).Err(err).Msg("YieldMax listing fetch failed")
	})

	if err := c.Visit(yieldMaxListURL); err != nil {
		return nil, err
	}
	return Dedupe(items), nil
}

// Enrich fetches each fund page and parses its latest distribution row.
// Tickers whose page yields nothing are simply absent from the result.
func (y *YieldMax) Enrich(tickers []string) map[string]DistributionInfo {
	out := make(map[string]DistributionInfo, len(tickers))
	for _, t := range tickers {
		info := y.fundLatest(t)
		if !info.Empty() {
			out[t] = info
		}
	}
	return out
}

// fundLatest finds the first table whose headers include ex-dividend,
// pay, and an amount column, and parses its first data row.
func (y *YieldMax) fundLatest(ticker string) DistributionInfo {
	url := yieldMaxFundURL(ticker)
	var info DistributionInfo

	c := y.newCollector()
	c.OnHTML("table", func(e *colly.HTMLElement) {
		if !info.Empty() {
			return
		}
		headers := lowerHeaders(e.ChildTexts("th"))
		if len(headers) == 0 {
			return
		}

		hasEx := headerIndex(headers, "ex-div", "ex dividend", "ex-date", "ex date", "ex-") >= 0
		hasPay := headerIndex(headers, "pay") >= 0
		hasAmt := headerIndex(headers, "amount", "distribution", "per share") >= 0
		if !hasEx || !hasPay || !hasAmt {
			return
		}

		iDecl := headerIndex(headers, "declaration")
		iEx := headerIndex(headers, "ex-div", "ex dividend", "ex-date", "ex date")
		iRec := headerIndex(headers, "record")
		iPay := headerIndex(headers, "pay")
		iAmt := headerIndex(headers, "amount", "distribution", "per share", "share")

		var cells []string
		e.ForEach("tr", func(_ int, row *colly.HTMLElement) {
			if cells != nil {
				return
			}
			if tds := row.ChildTexts("td"); len(tds) > 0 {
				cells = tds
			}
		})
		if cells == nil {
			return
		}
		info = parseDistRow(url, cells, iDecl, iEx, iRec, iPay, iAmt)
	})
	c.OnError(func(r *colly.Response, err error) {
		y.logger.Debug().Str("ticker", ticker).Str("url", url).Err(err).Msg("YieldMax fund page fetch failed")
	})

	if err := c.Visit(url); err != nil {
		y.logger.Debug().Str("ticker", ticker).Err(err).Msg("YieldMax fund page visit failed")
		return DistributionInfo{}
	}
	return info
}
