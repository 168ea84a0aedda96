package datagen

import (
	"flakelab/internal/sqlgen"
	"flakelab/pkg/models"
)

// MarketsEarnings grows each company's base metrics across the quarters with
// random growth, seasonality and a linear trend.
func (g *Generator) MarketsEarnings(companies []models.Company, quarters []Quarter) []models.Earnings {
	var rows []models.Earnings
	for _, c := range companies {
		base, ok := baseMetrics[c.Ticker]
		if !ok {
			continue
		}
		for i, q := range quarters {
			earningsDate := q.End.AddDate(0, 0, g.intn(20, 50))

			growth := g.uniform(0.95, 1.25)
			if c.Ticker == "SNOW" {
				growth = g.uniform(1.2, 1.8)
			}
			seasonal := 1 + 0.1*g.uniform(-1, 1)

			revenue := base.revenue * growth * seasonal * (1 + float64(i)*0.05)
			netIncome := base.netIncome * growth * seasonal * (1 + float64(i)*0.03)
			shares := base.shares * (1 + float64(i)*0.01)
			eps := netIncome / shares

			grossMargin := g.uniform(35, 65)
			if c.Ticker == "SNOW" {
				grossMargin = g.uniform(70, 85)
			}
			operatingMargin := netIncome / revenue * 100 * g.uniform(0.8, 1.2)

			estRevenue, estEPS := g.estimates(revenue, eps)

			guidanceRevLow := revenue * g.uniform(1.0, 1.15)
			guidanceRevHigh := guidanceRevLow * g.uniform(1.05, 1.15)
			guidanceEPSLow := eps * g.uniform(1.0, 1.2)
			guidanceEPSHigh := guidanceEPSLow * g.uniform(1.05, 1.2)

			rows = append(rows, models.Earnings{
				Ticker:              c.Ticker,
				Quarter:             q.Label,
				EarningsDate:        formatDate(earningsDate),
				FiscalQuarter:       (int(q.Start.Month())-1)/3 + 1,
				FiscalYear:          q.Start.Year(),
				RevenueMillions:     sqlgen.Round(revenue, 2),
				NetIncomeMillions:   sqlgen.Round(netIncome, 2),
				EPS:                 sqlgen.Round(eps, 4),
				DilutedShares:       sqlgen.Round(shares, 2),
				GrossMarginPct:      sqlgen.Round(grossMargin, 2),
				OperatingMarginPct:  sqlgen.Round(operatingMargin, 2),
				GuidanceRevenueLow:  sqlgen.Round(guidanceRevLow, 2),
				GuidanceRevenueHigh: sqlgen.Round(guidanceRevHigh, 2),
				GuidanceEPSLow:      sqlgen.Round(guidanceEPSLow, 4),
				GuidanceEPSHigh:     sqlgen.Round(guidanceEPSHigh, 4),
				AnalystEstRevenue:   sqlgen.Round(estRevenue, 2),
				AnalystEstEPS:       sqlgen.Round(estEPS, 4),
				RevenueSurprisePct:  sqlgen.Round(surprise(revenue, estRevenue), 2),
				EPSSurprisePct:      sqlgen.Round(surprise(eps, estEPS), 2),
			})
		}
	}
	return rows
}

// DualToolEarnings draws each quarter independently from per-ticker ranges
func (g *Generator) DualToolEarnings(companies []models.Company, quarters []Quarter) []models.Earnings {
	var rows []models.Earnings
	for _, c := range companies {
		for _, q := range quarters {
			earningsDate := q.End.AddDate(0, 0, g.intn(15, 45))

			var revenue, netIncome, shares float64
			switch c.Ticker {
			case "SNOW":
				revenue, netIncome, shares = g.uniform(600, 800), g.uniform(-50, 50), 350
			case "AAPL":
				revenue, netIncome, shares = g.uniform(90000, 95000), g.uniform(20000, 25000), 15500
			case "NVDA":
				revenue, netIncome, shares = g.uniform(18000, 22000), g.uniform(4000, 6000), 2500
			default:
				revenue, netIncome, shares = g.uniform(20000, 50000), g.uniform(5000, 15000), 7000
			}
			eps := netIncome / shares
			estRevenue, estEPS := g.estimates(revenue, eps)

			rows = append(rows, models.Earnings{
				Ticker:             c.Ticker,
				Quarter:            q.Label,
				EarningsDate:       formatDate(earningsDate),
				FiscalQuarter:      (int(q.Start.Month())-1)/3 + 1,
				FiscalYear:         q.Start.Year(),
				RevenueMillions:    sqlgen.Round(revenue, 2),
				NetIncomeMillions:  sqlgen.Round(netIncome, 2),
				EPS:                sqlgen.Round(eps, 4),
				AnalystEstRevenue:  sqlgen.Round(estRevenue, 2),
				AnalystEstEPS:      sqlgen.Round(estEPS, 4),
				RevenueSurprisePct: sqlgen.Round(surprise(revenue, estRevenue), 2),
				EPSSurprisePct:     sqlgen.Round(surprise(eps, estEPS), 2),
			})
		}
	}
	return rows
}

func (g *Generator) estimates(revenue, eps float64) (float64, float64) {
	return revenue * g.uniform(0.95, 1.05), eps * g.uniform(0.9, 1.1)
}

// surprise is the percentage by which actual beat estimate
func surprise(actual, estimate float64) float64 {
	if estimate == 0 {
		return 0
	}
	return (actual - estimate) / estimate * 100
}
