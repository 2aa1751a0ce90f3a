package collect

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"

	"weekly-etf-dashboard/internal/models"
)

const (
	graniteSharesGuideURL = "https://graniteshares.com/media/us4pi2qq/graniteshares-product-guide.pdf"
	graniteSharesDistURL  = "https://graniteshares.com/institutional/us/en-us/underlyings/distribution/"
)

// YieldBOOST tickers end in Y or YY.
var graniteSharesTickerRe = regexp.MustCompile(`\b[A-Z]{3,5}Y{1,2}\b`)

// GraniteShares discovers YieldBOOST funds from the product guide PDF
// and enriches them from the official distribution table page.
type GraniteShares struct {
	fetcher *Fetcher
	ua      string
	delay   time.Duration
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGraniteShares creates the GraniteShares source.
func NewGraniteShares(fetcher *Fetcher, ua string, delay, timeout time.Duration, logger zerolog.Logger) *GraniteShares {
	return &GraniteShares{fetcher: fetcher, ua: ua, delay: delay, timeout: timeout, logger: logger}
}

// Discover scans the raw bytes of the product guide PDF for ticker
// candidates and keeps those with "Weekly" nearby. PDF text streams keep
// ASCII runs intact, so no PDF library is needed for this.
func (g *GraniteShares) Discover(ctx context.Context) ([]Discovery, error) {
	body, err := g.fetcher.Get(ctx, models.IssuerGraniteShares, graniteSharesGuideURL)
	if err != nil {
		return nil, err
	}
	blob := string(body)

	set := make(map[string]struct{})
	for _, t := range graniteSharesTickerRe.FindAllString(blob, -1) {
		set[t] = struct{}{}
	}
	candidates := make([]string, 0, len(set))
	for t := range set {
		candidates = append(candidates, t)
	}
	sort.Strings(candidates)

	var items []Discovery
	for _, t := range candidates {
		if !weeklyNear(blob, t) {
			continue
		}
		items = append(items, Discovery{
			Ticker: t,
			Issuer: models.IssuerGraniteShares,
			Notes:  "Discovered via GraniteShares product guide PDF (weekly)",
		})
	}
	return Dedupe(items), nil
}

// weeklyNear reports whether "Weekly" occurs within 220 bytes after the
// ticker anywhere in the document. The guide lists each fund's cadence
// right beside its ticker.
func weeklyNear(blob, ticker string) bool {
	re, err := regexp.Compile(`(?is)` + regexp.QuoteMeta(ticker) + `.{0,220}weekly`)
	if err != nil {
		return false
	}
	return re.MatchString(blob)
}

// gsTable is one scored candidate from the distribution page.
type gsTable struct {
	score   int
	headers []string
	rows    [][]string
}

// DistributionTable parses the official distribution page and returns
// per-ticker enrichment for every weekly row of the best-matching table.
func (g *GraniteShares) DistributionTable(ctx context.Context) map[string]DistributionInfo {
	var best *gsTable

	c := colly.NewCollector(colly.UserAgent(g.ua))
	c.SetRequestTimeout(g.timeout)
	c.Limit(&colly.LimitRule{
		DomainGlob: "*graniteshares.com*",
		Delay:      g.delay,
	})

	c.OnHTML("table", func(e *colly.HTMLElement) {
		headers := lowerHeaders(e.ChildTexts("th"))
		if len(headers) == 0 {
			return
		}
		blob := strings.Join(headers, " ")

		score := 0
		if strings.Contains(blob, "ticker") {
			score += 2
		}
		if strings.Contains(blob, "frequency") {
			score++
		}
		if strings.Contains(blob, "distribution") {
			score += 2
		}
		if strings.Contains(blob, "pay") {
			score++
		}
		if strings.Contains(blob, "ex") {
			score++
		}
		if best != nil && score <= best.score {
			return
		}

		tbl := &gsTable{score: score, headers: headers}
		e.ForEach("tr", func(_ int, row *colly.HTMLElement) {
			if cells := row.ChildTexts("td"); len(cells) > 0 {
				tbl.rows = append(tbl.rows, cells)
			}
		})
		best = tbl
	})
	c.OnError(func(resp *colly.Response, err error) {
		g.logger.Warn().Str("url", graniteSharesDistURL).Err(err).Msg("GraniteShares distribution page fetch failed")
	})

	if err := c.Visit(graniteSharesDistURL); err != nil {
		g.logger.Warn().Err(err).Msg("GraniteShares distribution page visit failed")
		return nil
	}
	if best == nil {
		return nil
	}

	iTicker := headerIndex(best.headers, "ticker")
	iFreq := headerIndex(best.headers, "frequency")
	iDist := headerIndex(best.headers, "distribution per share", "distribution", "amount")
	iEx := headerIndex(best.headers, "ex-date", "ex date", "ex-div", "ex dividend")
	iRec := headerIndex(best.headers, "record")
	iPay := headerIndex(best.headers, "payment date", "pay date", "payment", "pay")

	out := make(map[string]DistributionInfo)
	for _, cells := range best.rows {
		ticker := strings.ToUpper(cellAt(cells, iTicker))
		if ticker == "" {
			continue
		}
		if freq := cellAt(cells, iFreq); freq != "" && !strings.EqualFold(freq, "weekly") {
			continue
		}
		info := parseDistRow(graniteSharesDistURL, cells, -1, iEx, iRec, iPay, iDist)
		if !info.Empty() {
			out[ticker] = info
		}
	}
	return out
}
