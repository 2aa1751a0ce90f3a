package collect

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
)

const (
	yahooQuoteBase = "https://query1.finance.yahoo.com/v7/finance/quote?symbols="

	// yahooBatchSize keeps the symbols query parameter within what the
	// quote endpoint accepts.
	yahooBatchSize = 80
)

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Yahoo fetches batch market quotes for discovered tickers.
type Yahoo struct {
	fetcher *Fetcher
	logger  zerolog.Logger
}

// NewYahoo creates the quote source.
func NewYahoo(fetcher *Fetcher, logger zerolog.Logger) *Yahoo {
	return &Yahoo{fetcher: fetcher, logger: logger}
}

// BatchQuotes returns regular-market prices keyed by upper-cased ticker.
// A failed batch is logged and skipped; missing prices are never fatal
// to a run.
func (y *Yahoo) BatchQuotes(ctx context.Context, tickers []string) map[string]float64 {
	out := make(map[string]float64, len(tickers))

	cleaned := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}

	for i := 0; i < len(cleaned); i += yahooBatchSize {
		end := i + yahooBatchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}
		batch := cleaned[i:end]

		body, err := y.fetcher.Get(ctx, "Yahoo", yahooQuoteBase+strings.Join(batch, ","))
		if err != nil {
			y.logger.Warn().Int("batch_size", len(batch)).Err(err).Msg("Yahoo quote batch failed")
			continue
		}

		var resp yahooQuoteResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			y.logger.Warn().Err(err).Msg("Yahoo quote response unmarshal failed")
			continue
		}
		for _, q := range resp.QuoteResponse.Result {
			sym := strings.ToUpper(q.Symbol)
			if sym != "" && q.RegularMarketPrice != nil {
				out[sym] = *q.RegularMarketPrice
			}
		}
	}
	return out
}
