package models

// Row types for the markets demo tables. Dates are YYYY-MM-DD strings so rows
// can be rendered as SQL literals and written to Parquet unchanged.

// Company is a row of RAW_DATA.companies
type Company struct {
	Ticker              string  `parquet:"ticker" json:"ticker"`
	CompanyName         string  `parquet:"company_name" json:"company_name"`
	Sector              string  `parquet:"sector" json:"sector"`
	Industry            string  `parquet:"industry" json:"industry"`
	MarketCapBillions   float64 `parquet:"market_cap_billions" json:"market_cap_billions"`
	Headquarters        string  `parquet:"headquarters" json:"headquarters"`
	FoundedYear         int     `parquet:"founded_year" json:"founded_year"`
	EmployeeCount       int     `parquet:"employee_count" json:"employee_count"`
	BusinessDescription string  `parquet:"business_description" json:"business_description"`
}

// StockPrice is one daily bar
type StockPrice struct {
	Ticker        string  `parquet:"ticker" json:"ticker"`
	PriceDate     string  `parquet:"price_date" json:"price_date"`
	OpenPrice     float64 `parquet:"open_price" json:"open_price"`
	HighPrice     float64 `parquet:"high_price" json:"high_price"`
	LowPrice      float64 `parquet:"low_price" json:"low_price"`
	ClosePrice    float64 `parquet:"close_price" json:"close_price"`
	AdjustedClose float64 `parquet:"adjusted_close" json:"adjusted_close"`
	Volume        int64   `parquet:"volume" json:"volume"`
}

// Earnings is one quarterly result. Guidance fields are zero in the
// dual-tool variant, which does not carry them.
type Earnings struct {
	Ticker              string  `parquet:"ticker" json:"ticker"`
	Quarter             string  `parquet:"quarter" json:"quarter"`
	EarningsDate        string  `parquet:"earnings_date" json:"earnings_date"`
	FiscalQuarter       int     `parquet:"fiscal_quarter" json:"fiscal_quarter"`
	FiscalYear          int     `parquet:"fiscal_year" json:"fiscal_year"`
	RevenueMillions     float64 `parquet:"revenue_millions" json:"revenue_millions"`
	NetIncomeMillions   float64 `parquet:"net_income_millions" json:"net_income_millions"`
	EPS                 float64 `parquet:"earnings_per_share" json:"earnings_per_share"`
	DilutedShares       float64 `parquet:"diluted_shares_millions" json:"diluted_shares_millions"`
	GrossMarginPct      float64 `parquet:"gross_margin_percent" json:"gross_margin_percent"`
	OperatingMarginPct  float64 `parquet:"operating_margin_percent" json:"operating_margin_percent"`
	GuidanceRevenueLow  float64 `parquet:"guidance_revenue_low" json:"guidance_revenue_low"`
	GuidanceRevenueHigh float64 `parquet:"guidance_revenue_high" json:"guidance_revenue_high"`
	GuidanceEPSLow      float64 `parquet:"guidance_eps_low" json:"guidance_eps_low"`
	GuidanceEPSHigh     float64 `parquet:"guidance_eps_high" json:"guidance_eps_high"`
	AnalystEstRevenue   float64 `parquet:"analyst_est_revenue" json:"analyst_est_revenue"`
	AnalystEstEPS       float64 `parquet:"analyst_est_eps" json:"analyst_est_eps"`
	RevenueSurprisePct  float64 `parquet:"revenue_surprise_percent" json:"revenue_surprise_percent"`
	EPSSurprisePct      float64 `parquet:"eps_surprise_percent" json:"eps_surprise_percent"`
}

// ResearchReport is an analyst report. TickersCovered is an ARRAY column in
// the markets variant and a comma-joined VARCHAR in the dual-tool variant,
// where MarketAnalysis and CompanyAnalysis replace thesis and risks.
type ResearchReport struct {
	ReportID         string   `parquet:"report_id" json:"report_id"`
	Title            string   `parquet:"title" json:"title"`
	Author           string   `parquet:"author" json:"author"`
	Firm             string   `parquet:"firm" json:"firm"`
	PublishDate      string   `parquet:"publish_date" json:"publish_date"`
	ReportType       string   `parquet:"report_type" json:"report_type"`
	Sector           string   `parquet:"sector" json:"sector"`
	TickersCovered   []string `parquet:"tickers_covered,list" json:"tickers_covered"`
	Theme            string   `parquet:"theme" json:"theme"`
	InvestmentThesis string   `parquet:"investment_thesis" json:"investment_thesis"`
	KeyRisks         string   `parquet:"key_risks" json:"key_risks"`
	PriceTarget      float64  `parquet:"price_target" json:"price_target"`
	Rating           string   `parquet:"rating" json:"rating"`
	ReportSummary    string   `parquet:"report_summary" json:"report_summary"`
	MarketAnalysis   string   `parquet:"market_analysis" json:"market_analysis,omitempty"`
	CompanyAnalysis  string   `parquet:"company_analysis" json:"company_analysis,omitempty"`
	FullContent      string   `parquet:"full_content" json:"full_content"`
}

// Transcript is an earnings call transcript
type Transcript struct {
	TranscriptID      string `parquet:"transcript_id" json:"transcript_id"`
	Ticker            string `parquet:"ticker" json:"ticker"`
	Quarter           string `parquet:"quarter" json:"quarter"`
	CallDate          string `parquet:"call_date" json:"call_date"`
	CallType          string `parquet:"call_type" json:"call_type"`
	Title             string `parquet:"title" json:"title"`
	Participants      string `parquet:"participants" json:"participants"`
	ManagementRemarks string `parquet:"management_remarks" json:"management_remarks"`
	QASection         string `parquet:"qa_section" json:"qa_section"`
	FullTranscript    string `parquet:"full_transcript" json:"full_transcript"`
}

// MarketEvent is a macro event with the sectors and tickers it touched
type MarketEvent struct {
	EventID         string   `parquet:"event_id" json:"event_id"`
	EventDate       string   `parquet:"event_date" json:"event_date"`
	EventType       string   `parquet:"event_type" json:"event_type"`
	Title           string   `parquet:"title" json:"title"`
	Description     string   `parquet:"description" json:"description"`
	ImpactLevel     string   `parquet:"impact_level" json:"impact_level"`
	AffectedSectors []string `parquet:"affected_sectors,list" json:"affected_sectors"`
	AffectedTickers []string `parquet:"affected_tickers,list" json:"affected_tickers"`
	MarketReaction  string   `parquet:"market_reaction_summary" json:"market_reaction_summary"`
}

// MarketsFixtures is the full generated data set for one deployment
type MarketsFixtures struct {
	Companies   []Company
	Prices      []StockPrice
	Earnings    []Earnings
	Reports     []ResearchReport
	Transcripts []Transcript
	Events      []MarketEvent
}
