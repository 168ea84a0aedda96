package markets

import (
	"flakelab/internal/sqlgen"
)

// Database is the target of both variants
const Database = "MARKETS_AI_DEMO"

// Schema names
const (
	SchemaRaw         = "RAW_DATA"
	SchemaEnriched    = "ENRICHED_DATA"
	SchemaAnalytics   = "ANALYTICS"
	SchemaSearch      = "SEARCH_SERVICES"
	SchemaMarketplace = "MARKETPLACE_DATA"
)

// Table and view names
const (
	TableCompanies   = "companies"
	TablePrices      = "stock_prices"
	TableEarnings    = "earnings_data"
	TableReports     = "research_reports"
	TableEvents      = "market_events"
	TableTranscripts = "earnings_call_transcripts"

	ViewEarnings     = "earnings_analysis_semantic"
	ViewThematic     = "thematic_research_semantic"
	ViewIndicators   = "economic_indicators"
	SearchReports    = "research_reports_search"
	SearchTranscript = "earnings_transcripts_search"
)

func (v Variant) schemas() []string {
	if v == VariantDualTool {
		return []string{SchemaRaw, SchemaAnalytics, SchemaSearch}
	}
	return []string{SchemaRaw, SchemaEnriched, SchemaAnalytics, SchemaSearch}
}

type tableDDL struct {
	name string
	sql  string
}

var marketsTables = []tableDDL{
	{TableCompanies, `CREATE OR REPLACE TABLE companies (
    ticker VARCHAR(10) PRIMARY KEY,
    company_name VARCHAR(200) NOT NULL,
    sector VARCHAR(100) NOT NULL,
    industry VARCHAR(200),
    market_cap_billions DECIMAL(15,2),
    headquarters VARCHAR(100),
    founded_year INTEGER,
    employee_count INTEGER,
    business_description TEXT,
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{TablePrices, `CREATE OR REPLACE TABLE stock_prices (
    ticker VARCHAR(10),
    price_date DATE,
    open_price DECIMAL(10,2),
    high_price DECIMAL(10,2),
    low_price DECIMAL(10,2),
    close_price DECIMAL(10,2),
    volume BIGINT,
    adjusted_close DECIMAL(10,2),
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
    PRIMARY KEY (ticker, price_date)
)`},
	{TableEarnings, `CREATE OR REPLACE TABLE earnings_data (
    ticker VARCHAR(10),
    quarter VARCHAR(10),
    earnings_date DATE,
    fiscal_quarter INTEGER,
    fiscal_year INTEGER,
    revenue_millions DECIMAL(15,2),
    net_income_millions DECIMAL(15,2),
    earnings_per_share DECIMAL(10,4),
    diluted_shares_millions DECIMAL(15,2),
    gross_margin_percent DECIMAL(5,2),
    operating_margin_percent DECIMAL(5,2),
    guidance_revenue_low DECIMAL(15,2),
    guidance_revenue_high DECIMAL(15,2),
    guidance_eps_low DECIMAL(10,4),
    guidance_eps_high DECIMAL(10,4),
    analyst_est_revenue DECIMAL(15,2),
    analyst_est_eps DECIMAL(10,4),
    revenue_surprise_percent DECIMAL(5,2),
    eps_surprise_percent DECIMAL(5,2),
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
    PRIMARY KEY (ticker, quarter)
)`},
	{TableReports, `CREATE OR REPLACE TABLE research_reports (
    report_id VARCHAR(50) PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    author VARCHAR(200),
    firm VARCHAR(200),
    publish_date DATE,
    report_type VARCHAR(100),
    sector VARCHAR(100),
    tickers_covered ARRAY,
    theme VARCHAR(200),
    investment_thesis TEXT,
    key_risks TEXT,
    price_target DECIMAL(10,2),
    rating VARCHAR(50),
    report_summary TEXT,
    full_content TEXT,
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{TableEvents, `CREATE OR REPLACE TABLE market_events (
    event_id VARCHAR(50) PRIMARY KEY,
    event_date DATE,
    event_type VARCHAR(100),
    title VARCHAR(500),
    description TEXT,
    impact_level VARCHAR(20),
    affected_sectors ARRAY,
    affected_tickers ARRAY,
    market_reaction_summary TEXT,
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
}

var dualToolTables = []tableDDL{
	{TableCompanies, `CREATE OR REPLACE TABLE companies (
    ticker VARCHAR(10) PRIMARY KEY,
    company_name VARCHAR(200) NOT NULL,
    sector VARCHAR(100) NOT NULL,
    market_cap_billions DECIMAL(15,2),
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{TableEarnings, `CREATE OR REPLACE TABLE earnings_data (
    ticker VARCHAR(10),
    quarter VARCHAR(10),
    earnings_date DATE,
    revenue_millions DECIMAL(15,2),
    net_income_millions DECIMAL(15,2),
    earnings_per_share DECIMAL(10,4),
    analyst_est_revenue DECIMAL(15,2),
    analyst_est_eps DECIMAL(10,4),
    revenue_surprise_percent DECIMAL(5,2),
    eps_surprise_percent DECIMAL(5,2),
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
    PRIMARY KEY (ticker, quarter)
)`},
	{TableTranscripts, `CREATE OR REPLACE TABLE earnings_call_transcripts (
    transcript_id VARCHAR(50) PRIMARY KEY,
    ticker VARCHAR(10),
    quarter VARCHAR(10),
    call_date DATE,
    call_type VARCHAR(50),
    title VARCHAR(500),
    participants TEXT,
    management_remarks TEXT,
    qa_section TEXT,
    full_transcript TEXT,
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
	{TableReports, `CREATE OR REPLACE TABLE research_reports (
    report_id VARCHAR(50) PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    author VARCHAR(200),
    firm VARCHAR(200),
    publish_date DATE,
    sector VARCHAR(100),
    tickers_covered VARCHAR(500),
    theme VARCHAR(200),
    investment_thesis TEXT,
    key_risks TEXT,
    market_analysis TEXT,
    company_analysis TEXT,
    rating VARCHAR(50),
    price_target DECIMAL(10,2),
    full_report TEXT,
    created_at TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
)`},
}

func (v Variant) tables() []tableDDL {
	if v == VariantDualTool {
		return dualToolTables
	}
	return marketsTables
}

const marketsEarningsView = `SELECT
    e.ticker,
    c.company_name,
    e.quarter,
    e.earnings_date,
    e.revenue_millions as revenue,
    e.net_income_millions as net_income,
    e.earnings_per_share as eps,
    e.revenue_surprise_percent,
    e.eps_surprise_percent,
    e.guidance_revenue_low,
    e.guidance_revenue_high,
    e.analyst_est_revenue,
    e.analyst_est_eps,
    c.sector,
    c.market_cap_billions
FROM RAW_DATA.earnings_data e
JOIN RAW_DATA.companies c ON e.ticker = c.ticker
WHERE c.sector = 'Technology'`

const dualToolEarningsView = `SELECT
    e.ticker,
    c.company_name,
    e.quarter,
    e.earnings_date,
    e.revenue_millions as revenue,
    e.net_income_millions as net_income,
    e.earnings_per_share as eps,
    e.revenue_surprise_percent,
    e.eps_surprise_percent,
    e.analyst_est_revenue,
    e.analyst_est_eps,
    c.market_cap_billions
FROM RAW_DATA.earnings_data e
JOIN RAW_DATA.companies c ON e.ticker = c.ticker
WHERE c.sector = 'Technology'`

const thematicViewTemplate = `SELECT
    r.report_id,
    r.title,
    r.author,
    r.firm,
    r.publish_date,
    r.theme,
    r.investment_thesis,
    r.rating,
    r.price_target,
    %s as companies_covered,
    r.sector
FROM RAW_DATA.research_reports r
WHERE r.sector = 'Technology'`

const indicatorsView = `SELECT
    'GDP_GROWTH' as indicator_name,
    CURRENT_DATE() - INTERVAL '30 days' as indicator_date,
    2.3 as indicator_value,
    'Quarterly GDP Growth Rate (%)' as description
UNION ALL
SELECT
    'UNEMPLOYMENT_RATE',
    CURRENT_DATE() - INTERVAL '15 days',
    3.8,
    'Monthly Unemployment Rate (%)'
UNION ALL
SELECT
    'FEDERAL_FUNDS_RATE',
    CURRENT_DATE() - INTERVAL '7 days',
    5.25,
    'Federal Funds Rate (%)'`

// searchServices returns the Cortex Search services of the variant
func (v Variant) searchServices(warehouse string) []sqlgen.SearchService {
	if v == VariantDualTool {
		return []sqlgen.SearchService{
			{
				Name:       SearchTranscript,
				On:         "full_transcript",
				Attributes: []string{"transcript_id", "title", "ticker", "quarter", "call_date"},
				Warehouse:  warehouse,
				Replace:    true,
				Query: `SELECT
    transcript_id,
    title,
    ticker,
    quarter,
    call_date,
    full_transcript
FROM RAW_DATA.earnings_call_transcripts`,
			},
			{
				Name:       SearchReports,
				On:         "full_report",
				Attributes: []string{"report_id", "title", "author", "firm", "theme", "rating", "price_target"},
				Warehouse:  warehouse,
				Replace:    true,
				Query: `SELECT
    report_id,
    title,
    author,
    firm,
    theme,
    rating,
    price_target,
    full_report
FROM RAW_DATA.research_reports`,
			},
		}
	}
	return []sqlgen.SearchService{
		{
			Name:       SearchReports,
			On:         "full_content",
			Attributes: []string{"title", "author", "firm", "theme", "rating"},
			Warehouse:  warehouse,
			Query: `SELECT
    report_id,
    title,
    author,
    firm,
    theme,
    rating,
    full_content
FROM RAW_DATA.research_reports`,
		},
	}
}
