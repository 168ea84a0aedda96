// Package datagen builds the synthetic rows loaded by the demo deployments.
// Generators are deterministic for a given seed and reference date.
package datagen

import (
	"math/rand"
	"time"

	"flakelab/pkg/models"
)

// Generator produces demo rows relative to a reference date
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New returns a generator seeded with seed. A zero seed uses the clock.
func New(seed int64, now time.Time) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: now,
	}
}

// Now returns the reference date
func (g *Generator) Now() time.Time {
	return g.now
}

// Markets builds the markets variant: 10 companies, 8 quarters of earnings
// for the first 7, 5 market events, 3 reports and daily prices.
func (g *Generator) Markets() models.MarketsFixtures {
	quarters := HistoricalQuarters(g.now, 8)
	start, end := DateRange(quarters)
	companies := Companies()

	return models.MarketsFixtures{
		Companies: companies,
		Earnings:  g.MarketsEarnings(companies[:earningsCoverage], quarters),
		Events:    MarketEvents(start),
		Reports:   MarketsReports(quarters),
		Prices:    g.StockPrices(Tickers(companies), start, end),
	}
}

// DualTool builds the dual-tool variant: 7 companies over 4 quarters plus
// transcripts for the latest quarter.
func (g *Generator) DualTool() models.MarketsFixtures {
	quarters := HistoricalQuarters(g.now, 4)
	companies := DualToolCompanies()

	return models.MarketsFixtures{
		Companies:   companies,
		Earnings:    g.DualToolEarnings(companies, quarters),
		Transcripts: g.Transcripts(quarters[len(quarters)-1]),
		Reports:     DualToolReports(quarters[len(quarters)-1]),
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// intn returns an int in [lo, hi]
func (g *Generator) intn(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}
