package markets

import (
	"strings"

	"github.com/shopspring/decimal"

	"flakelab/internal/sqlgen"
	"flakelab/pkg/models"
)

// insertChunk bounds the size of a single INSERT statement
const insertChunk = 500

func companyInsert(v Variant, rows []models.Company) *sqlgen.Insert {
	if v == VariantDualTool {
		ins := &sqlgen.Insert{
			Table:   TableCompanies,
			Columns: []string{"ticker", "company_name", "sector", "market_cap_billions"},
		}
		for _, c := range rows {
			ins.Add(c.Ticker, c.CompanyName, c.Sector, c.MarketCapBillions)
		}
		return ins
	}

	ins := &sqlgen.Insert{
		Table: TableCompanies,
		Columns: []string{"ticker", "company_name", "sector", "industry", "market_cap_billions",
			"headquarters", "founded_year", "employee_count", "business_description"},
	}
	for _, c := range rows {
		ins.Add(c.Ticker, c.CompanyName, c.Sector, c.Industry, c.MarketCapBillions,
			c.Headquarters, c.FoundedYear, c.EmployeeCount, c.BusinessDescription)
	}
	return ins
}

func earningsInsert(v Variant, rows []models.Earnings) *sqlgen.Insert {
	if v == VariantDualTool {
		ins := &sqlgen.Insert{
			Table: TableEarnings,
			Columns: []string{"ticker", "quarter", "earnings_date", "revenue_millions", "net_income_millions",
				"earnings_per_share", "analyst_est_revenue", "analyst_est_eps",
				"revenue_surprise_percent", "eps_surprise_percent"},
		}
		for _, e := range rows {
			ins.Add(e.Ticker, e.Quarter, e.EarningsDate,
				money(e.RevenueMillions), money(e.NetIncomeMillions), per(e.EPS),
				money(e.AnalystEstRevenue), per(e.AnalystEstEPS),
				money(e.RevenueSurprisePct), money(e.EPSSurprisePct))
		}
		return ins
	}

	ins := &sqlgen.Insert{
		Table: TableEarnings,
		Columns: []string{"ticker", "quarter", "earnings_date", "fiscal_quarter", "fiscal_year",
			"revenue_millions", "net_income_millions", "earnings_per_share", "diluted_shares_millions",
			"gross_margin_percent", "operating_margin_percent",
			"guidance_revenue_low", "guidance_revenue_high", "guidance_eps_low", "guidance_eps_high",
			"analyst_est_revenue", "analyst_est_eps", "revenue_surprise_percent", "eps_surprise_percent"},
	}
	for _, e := range rows {
		ins.Add(e.Ticker, e.Quarter, e.EarningsDate, e.FiscalQuarter, e.FiscalYear,
			money(e.RevenueMillions), money(e.NetIncomeMillions), per(e.EPS), money(e.DilutedShares),
			money(e.GrossMarginPct), money(e.OperatingMarginPct),
			money(e.GuidanceRevenueLow), money(e.GuidanceRevenueHigh), per(e.GuidanceEPSLow), per(e.GuidanceEPSHigh),
			money(e.AnalystEstRevenue), per(e.AnalystEstEPS), money(e.RevenueSurprisePct), money(e.EPSSurprisePct))
	}
	return ins
}

func eventsInsert(rows []models.MarketEvent) *sqlgen.Insert {
	ins := &sqlgen.Insert{
		Table: TableEvents,
		Columns: []string{"event_id", "event_date", "event_type", "title", "description", "impact_level",
			"affected_sectors", "affected_tickers", "market_reaction_summary"},
	}
	for _, e := range rows {
		ins.Add(e.EventID, e.EventDate, e.EventType, e.Title, e.Description, e.ImpactLevel,
			e.AffectedSectors, e.AffectedTickers, e.MarketReaction)
	}
	return ins
}

func reportsInsert(v Variant, rows []models.ResearchReport) *sqlgen.Insert {
	if v == VariantDualTool {
		ins := &sqlgen.Insert{
			Table: TableReports,
			Columns: []string{"report_id", "title", "author", "firm", "publish_date", "sector", "tickers_covered",
				"theme", "investment_thesis", "key_risks", "market_analysis", "company_analysis",
				"rating", "price_target", "full_report"},
		}
		for _, r := range rows {
			ins.Add(r.ReportID, r.Title, r.Author, r.Firm, r.PublishDate, r.Sector,
				strings.Join(r.TickersCovered, ","), r.Theme, r.InvestmentThesis, r.KeyRisks,
				r.MarketAnalysis, r.CompanyAnalysis, r.Rating, money(r.PriceTarget), r.FullContent)
		}
		return ins
	}

	ins := &sqlgen.Insert{
		Table: TableReports,
		Columns: []string{"report_id", "title", "author", "firm", "publish_date", "report_type", "sector",
			"tickers_covered", "theme", "investment_thesis", "key_risks", "price_target", "rating",
			"report_summary", "full_content"},
	}
	for _, r := range rows {
		ins.Add(r.ReportID, r.Title, r.Author, r.Firm, r.PublishDate, r.ReportType, r.Sector,
			r.TickersCovered, r.Theme, r.InvestmentThesis, r.KeyRisks, money(r.PriceTarget), r.Rating,
			r.ReportSummary, r.FullContent)
	}
	return ins
}

func transcriptsInsert(rows []models.Transcript) *sqlgen.Insert {
	ins := &sqlgen.Insert{
		Table: TableTranscripts,
		Columns: []string{"transcript_id", "ticker", "quarter", "call_date", "call_type", "title",
			"participants", "management_remarks", "qa_section", "full_transcript"},
	}
	for _, t := range rows {
		ins.Add(t.TranscriptID, t.Ticker, t.Quarter, t.CallDate, t.CallType, t.Title,
			t.Participants, t.ManagementRemarks, t.QASection, t.FullTranscript)
	}
	return ins
}

func pricesInsert(rows []models.StockPrice) *sqlgen.Insert {
	ins := &sqlgen.Insert{
		Table: TablePrices,
		Columns: []string{"ticker", "price_date", "open_price", "high_price", "low_price", "close_price",
			"volume", "adjusted_close"},
	}
	for _, p := range rows {
		ins.Add(p.Ticker, p.PriceDate, money(p.OpenPrice), money(p.HighPrice), money(p.LowPrice),
			money(p.ClosePrice), p.Volume, money(p.AdjustedClose))
	}
	return ins
}

// money rounds to the DECIMAL(x,2) columns, per to DECIMAL(x,4)
func money(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(2) }
func per(v float64) decimal.Decimal   { return decimal.NewFromFloat(v).Round(4) }
