package datagen

import "flakelab/pkg/models"

// techCompanies is the markets demo universe. Every company is in the
// Technology sector.
var techCompanies = []struct {
	ticker, name, industry string
	marketCap              float64
	hq                     string
	founded, employees     int
	description            string
}{
	{"AAPL", "Apple Inc.", "Consumer Electronics", 3000.0, "Cupertino, CA", 1976, 164000, "Apple designs and manufactures consumer electronics, software, and online services."},
	{"MSFT", "Microsoft Corporation", "Software", 2800.0, "Redmond, WA", 1975, 221000, "Microsoft develops computer software, consumer electronics, and personal computers."},
	{"GOOGL", "Alphabet Inc.", "Internet Services", 1700.0, "Mountain View, CA", 1998, 182000, "Alphabet operates as a holding company with Google as its primary subsidiary."},
	{"NVDA", "NVIDIA Corporation", "Semiconductors", 1100.0, "Santa Clara, CA", 1993, 29600, "NVIDIA designs graphics processing units and system-on-chip products."},
	{"TSLA", "Tesla Inc.", "Electric Vehicles", 800.0, "Austin, TX", 2003, 140473, "Tesla designs, develops, and manufactures electric vehicles and energy storage systems."},
	{"META", "Meta Platforms Inc.", "Social Media", 750.0, "Menlo Park, CA", 2004, 86482, "Meta operates social networking platforms and develops virtual reality technologies."},
	{"SNOW", "Snowflake Inc.", "Cloud Computing", 65.0, "Bozeman, MT", 2012, 6800, "Snowflake provides cloud-based data warehousing and analytics services."},
	{"CRM", "Salesforce Inc.", "Cloud Software", 250.0, "San Francisco, CA", 1999, 79000, "Salesforce provides customer relationship management software and cloud computing services."},
	{"ORCL", "Oracle Corporation", "Database Software", 320.0, "Austin, TX", 1977, 164000, "Oracle develops database software and cloud computing technologies."},
	{"AMD", "Advanced Micro Devices Inc.", "Semiconductors", 230.0, "Santa Clara, CA", 1969, 26000, "AMD designs microprocessors and graphics processing units for servers and PCs."},
}

// dualToolTickers is the smaller dual-tool universe, in load order
var dualToolTickers = []string{"AAPL", "MSFT", "GOOGL", "NVDA", "SNOW", "META", "TSLA"}

// earningsCoverage is how many catalog companies get detailed earnings
const earningsCoverage = 7

// baseMetrics are the quarterly starting points in millions
var baseMetrics = map[string]struct {
	revenue, netIncome, shares float64
}{
	"AAPL":  {95000, 22000, 15500},
	"MSFT":  {52000, 16000, 7400},
	"GOOGL": {70000, 15000, 6200},
	"NVDA":  {15000, 4500, 2400},
	"TSLA":  {25000, 2000, 3100},
	"META":  {32000, 8500, 2600},
	"SNOW":  {600, -200, 350},
	"CRM":   {8000, 200, 1000},
	"ORCL":  {12000, 3500, 2700},
	"AMD":   {6000, 800, 1600},
}

// seedPrices anchor the synthetic price walk
var seedPrices = map[string]float64{
	"AAPL": 185, "MSFT": 410, "GOOGL": 150, "NVDA": 480, "TSLA": 240,
	"META": 480, "SNOW": 165, "CRM": 270, "ORCL": 120, "AMD": 160,
}

// Companies returns the markets catalog
func Companies() []models.Company {
	out := make([]models.Company, len(techCompanies))
	for i, c := range techCompanies {
		out[i] = models.Company{
			Ticker:              c.ticker,
			CompanyName:         c.name,
			Sector:              "Technology",
			Industry:            c.industry,
			MarketCapBillions:   c.marketCap,
			Headquarters:        c.hq,
			FoundedYear:         c.founded,
			EmployeeCount:       c.employees,
			BusinessDescription: c.description,
		}
	}
	return out
}

// DualToolCompanies returns the dual-tool catalog. Only ticker, name, sector
// and market cap are populated.
func DualToolCompanies() []models.Company {
	out := make([]models.Company, 0, len(dualToolTickers))
	for _, ticker := range dualToolTickers {
		c, _ := CompanyByTicker(ticker)
		marketCap := 200.0
		switch ticker {
		case "AAPL":
			marketCap = 1000
		case "MSFT":
			marketCap = 500
		}
		out = append(out, models.Company{
			Ticker:            c.Ticker,
			CompanyName:       c.CompanyName,
			Sector:            "Technology",
			MarketCapBillions: marketCap,
		})
	}
	return out
}

// CompanyByTicker looks a company up in the markets catalog
func CompanyByTicker(ticker string) (models.Company, bool) {
	for _, c := range Companies() {
		if c.Ticker == ticker {
			return c, true
		}
	}
	return models.Company{}, false
}

// Tickers returns the tickers of companies in order
func Tickers(companies []models.Company) []string {
	out := make([]string, len(companies))
	for i, c := range companies {
		out[i] = c.Ticker
	}
	return out
}
