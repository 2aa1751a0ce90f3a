package collect

import (
	"context"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"

	"weekly-etf-dashboard/internal/config"
	"weekly-etf-dashboard/internal/logging"
	"weekly-etf-dashboard/internal/models"
	"weekly-etf-dashboard/pkg/utils"
)

// Collector runs the full collection stage: issuer discovery, batch
// pricing, per-issuer enrichment, and snapshot record assembly.
type Collector struct {
	cfg       config.ScrapeConfig
	yieldMax  *YieldMax
	roundhill *Roundhill
	granite   *GraniteShares
	yahoo     *Yahoo
	logger    zerolog.Logger
}

// New creates a collector. All sources share one fetcher, so the
// politeness interval applies across sources.
func New(cfg config.ScrapeConfig, logger zerolog.Logger) *Collector {
	fetcher := NewFetcher(cfg.UserAgent, cfg.MinFetchInterval, cfg.Timeout)
	return &Collector{
		cfg:       cfg,
		yieldMax:  NewYieldMax(cfg.UserAgent, cfg.MinFetchInterval, cfg.Timeout, logging.WithSource(logger, models.IssuerYieldMax)),
		roundhill: NewRoundhill(fetcher, cfg.UserAgent, cfg.MinFetchInterval, cfg.Timeout, logging.WithSource(logger, models.IssuerRoundhill)),
		granite:   NewGraniteShares(fetcher, cfg.UserAgent, cfg.MinFetchInterval, cfg.Timeout, logging.WithSource(logger, models.IssuerGraniteShares)),
		yahoo:     NewYahoo(fetcher, logging.WithSource(logger, "Yahoo")),
		logger:    logger,
	}
}

// BuildItems assembles the day's weekly snapshot records. A source that
// fails entirely contributes nothing; the run carries on with whatever
// the remaining sources produced.
func (c *Collector) BuildItems(ctx context.Context) []models.SnapshotRecord {
	var discovered []Discovery

	if items, err := c.yieldMax.Discover(); err != nil {
		c.logger.Warn().Err(err).Msg("YieldMax discovery failed")
	} else {
		discovered = append(discovered, items...)
	}
	if items, err := c.roundhill.Discover(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Roundhill discovery failed")
	} else {
		discovered = append(discovered, items...)
	}
	if items, err := c.granite.Discover(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("GraniteShares discovery failed")
	} else {
		discovered = append(discovered, items...)
	}
	discovered = append(discovered, LoadManualTickers(c.cfg.ManualTickers)...)

	discovered = Dedupe(discovered)
	c.logDiscovery(discovered)

	tickers := make([]string, 0, len(discovered))
	byIssuer := make(map[string][]string)
	for _, d := range discovered {
		tickers = append(tickers, d.Ticker)
		byIssuer[d.Issuer] = append(byIssuer[d.Issuer], d.Ticker)
	}

	prices := c.yahoo.BatchQuotes(ctx, tickers)

	ymInfo := c.yieldMax.Enrich(byIssuer[models.IssuerYieldMax])
	rhInfo := c.roundhill.Enrich(byIssuer[models.IssuerRoundhill])
	gsInfo := c.granite.DistributionTable(ctx)

	c.logger.Info().
		Str("event", "enrich").
		Int("yieldmax", len(ymInfo)).
		Int("roundhill", len(rhInfo)).
		Int("graniteshares", len(gsInfo)).
		Msg("Enrichment complete")

	items := make([]models.SnapshotRecord, 0, len(discovered))
	for _, d := range discovered {
		rec := models.SnapshotRecord{
			Ticker:         d.Ticker,
			Name:           d.Name,
			Issuer:         d.Issuer,
			ReferenceAsset: d.ReferenceAsset,
			Frequency:      models.FrequencyWeekly,
			Notes:          d.Notes,
		}

		if price, ok := prices[d.Ticker]; ok {
			rec.PriceProxy = null.FloatFrom(price)
			rec.SharePrice = null.FloatFrom(price)
		}

		var info DistributionInfo
		var found bool
		switch d.Issuer {
		case models.IssuerYieldMax:
			info, found = ymInfo[d.Ticker]
		case models.IssuerRoundhill:
			info, found = rhInfo[d.Ticker]
		case models.IssuerGraniteShares:
			info, found = gsInfo[d.Ticker]
		}
		if found {
			info.ApplyTo(&rec)
		}

		// Weekly payout as a percentage of the current share price.
		if rec.DistributionPerShare.Valid && rec.SharePrice.Valid && rec.SharePrice.Float64 != 0 {
			rec.DivPctPerShare = null.FloatFrom(utils.RoundTo(rec.DistributionPerShare.Float64/rec.SharePrice.Float64*100.0, 2))
		}

		rec.SyncAliases()
		items = append(items, rec)
	}

	// Safety filter; discovery only produces weekly funds, but manual
	// entries and future sources go through here too.
	weekly := items[:0]
	for _, it := range items {
		if it.Frequency.IsWeekly() {
			weekly = append(weekly, it)
		}
	}
	return weekly
}

// MinItems is the fallback floor below which a collection result is
// treated as a scrape collapse.
func (c *Collector) MinItems() int {
	return c.cfg.MinItems
}

func (c *Collector) logDiscovery(discovered []Discovery) {
	counts := make(map[string]int)
	for _, d := range discovered {
		counts[d.Issuer]++
	}
	logging.LogDiscovery(c.logger, counts, len(discovered))
}
