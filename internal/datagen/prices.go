package datagen

import (
	"math"
	"time"

	"flakelab/internal/sqlgen"
	"flakelab/pkg/models"
)

const (
	dailyVolatility = 0.02
	minVolume       = 1_000_000
	maxVolume       = 50_000_000
)

// StockPrices walks a daily bar per business day for every ticker. Days after
// the reference date are not generated.
func (g *Generator) StockPrices(tickers []string, start, end time.Time) []models.StockPrice {
	if end.After(g.now) {
		end = g.now
	}
	days, err := BusinessDays(formatDate(start), formatDate(end))
	if err != nil {
		return nil
	}

	rows := make([]models.StockPrice, 0, len(tickers)*len(days))
	for _, ticker := range tickers {
		price, ok := seedPrices[ticker]
		if !ok {
			price = 100
		}
		for _, day := range days {
			open := price * (1 + g.rng.NormFloat64()*dailyVolatility/4)
			closePrice := open * math.Exp(g.rng.NormFloat64()*dailyVolatility)
			high := math.Max(open, closePrice) * (1 + g.uniform(0, dailyVolatility))
			low := math.Min(open, closePrice) * (1 - g.uniform(0, dailyVolatility))

			rows = append(rows, models.StockPrice{
				Ticker:        ticker,
				PriceDate:     day,
				OpenPrice:     sqlgen.Round(open, 2),
				HighPrice:     sqlgen.Round(high, 2),
				LowPrice:      sqlgen.Round(low, 2),
				ClosePrice:    sqlgen.Round(closePrice, 2),
				AdjustedClose: sqlgen.Round(closePrice, 2),
				Volume:        int64(g.intn(minVolume, maxVolume)),
			})
			price = closePrice
		}
	}
	return rows
}
