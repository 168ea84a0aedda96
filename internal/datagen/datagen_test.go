package datagen

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refDate = time.Date(2025, time.November, 18, 0, 0, 0, 0, time.UTC)

func TestQuarterHelpers(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		start string
		end   string
		label string
	}{
		{"first quarter", time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), "2025-01-01", "2025-03-31", "2025Q1"},
		{"second quarter", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), "2025-04-01", "2025-06-30", "2025Q2"},
		{"third quarter", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "2025-07-01", "2025-09-30", "2025Q3"},
		{"fourth quarter", refDate, "2025-10-01", "2025-12-31", "2025Q4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := QuarterStart(tt.date)
			assert.Equal(t, tt.start, formatDate(start))
			assert.Equal(t, tt.end, formatDate(QuarterEnd(start)))
			assert.Equal(t, tt.label, QuarterLabel(start))
		})
	}
}

func TestHistoricalQuarters(t *testing.T) {
	quarters := HistoricalQuarters(refDate, 8)
	require.Len(t, quarters, 8)

	assert.Equal(t, "2024Q1", quarters[0].Label)
	assert.Equal(t, "2025Q4", quarters[7].Label)
	for i, q := range quarters {
		assert.True(t, q.Start.Before(q.End), q.Label)
		if i > 0 {
			assert.Equal(t, quarters[i-1].End.AddDate(0, 0, 1), q.Start)
		}
	}

	start, end := DateRange(quarters)
	assert.Equal(t, "2024-01-01", formatDate(start))
	assert.Equal(t, "2025-12-31", formatDate(end))
}

func TestQuarterEnds(t *testing.T) {
	assert.Equal(t,
		[]string{"2025-09-30", "2025-06-30", "2025-03-31", "2024-12-31"},
		QuarterEnds(refDate, 4))
	assert.Equal(t,
		[]string{"2024-12-31", "2024-09-30"},
		QuarterEnds(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 2))
}

func TestDateUtilities(t *testing.T) {
	days, err := DateList("2025-02-27", "2025-03-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}, days)

	business, err := BusinessDays("2025-11-14", "2025-11-18")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-11-14", "2025-11-17", "2025-11-18"}, business)

	_, err = DateList("yesterday", "2025-03-02")
	assert.Error(t, err)

	assert.Equal(t, []string{"2025-11-30", "2025-10-31", "2025-09-30"}, MonthEnds(refDate, 3))

	start, end := DateRangeBack(refDate, 30)
	assert.Equal(t, "2025-10-19", start)
	assert.Equal(t, "2025-11-18", end)
}

func TestMarketsFixtures(t *testing.T) {
	fx := New(42, refDate).Markets()

	assert.Len(t, fx.Companies, 10)
	assert.Len(t, fx.Earnings, 56)
	assert.Len(t, fx.Events, 5)
	assert.Len(t, fx.Reports, 3)
	assert.Empty(t, fx.Transcripts)
	assert.NotEmpty(t, fx.Prices)

	for _, c := range fx.Companies {
		assert.Equal(t, "Technology", c.Sector)
	}

	for _, e := range fx.Earnings {
		assert.Len(t, e.EarningsDate, 10)
		assert.Regexp(t, `^\d{4}Q[1-4]$`, e.Quarter)
		assert.GreaterOrEqual(t, e.GuidanceRevenueHigh, e.GuidanceRevenueLow)
		assert.GreaterOrEqual(t, e.GuidanceRevenueLow, e.RevenueMillions)
		if e.Ticker == "SNOW" {
			assert.GreaterOrEqual(t, e.GrossMarginPct, 70.0)
		}
	}

	start, end := DateRange(HistoricalQuarters(refDate, 8))
	for _, ev := range fx.Events {
		assert.True(t, ev.EventDate > formatDate(start), ev.EventID)
		assert.True(t, ev.EventDate <= formatDate(end), ev.EventID)
		assert.Contains(t, ev.MarketReaction, strings.ToLower(ev.ImpactLevel))
	}

	for _, p := range fx.Prices {
		assert.GreaterOrEqual(t, p.HighPrice, p.LowPrice)
		assert.Equal(t, p.ClosePrice, p.AdjustedClose)
		assert.True(t, p.PriceDate <= formatDate(refDate))
	}
}

func TestMarketsReports(t *testing.T) {
	reports := MarketsReports(HistoricalQuarters(refDate, 8))
	require.Len(t, reports, 3)

	byID := map[string]float64{}
	for _, r := range reports {
		byID[r.ReportID] = r.PriceTarget
		assert.Contains(t, r.FullContent, r.Title)
		assert.Contains(t, r.FullContent, "Recommendation: "+r.Rating)
	}
	assert.Equal(t, 850.0, byID["RPT_AI_ENTERPRISE_2024_Q4"])
	assert.Equal(t, 180.0, byID["RPT_CLOUD_DATA_2024_Q3"])
	assert.Equal(t, 180.0, byID["RPT_SNOWFLAKE_DEEP_2024"])

	assert.Equal(t, "2026-01-05", reports[2].PublishDate)
	assert.Equal(t, "Strong Buy", reports[0].Rating)
}

func TestDualToolFixtures(t *testing.T) {
	fx := New(7, refDate).DualTool()

	assert.Len(t, fx.Companies, 7)
	assert.Len(t, fx.Earnings, 28)
	assert.Len(t, fx.Transcripts, 3)
	assert.Len(t, fx.Reports, 3)
	assert.Empty(t, fx.Prices)

	for _, e := range fx.Earnings {
		assert.Zero(t, e.GuidanceRevenueLow)
		switch e.Ticker {
		case "SNOW":
			assert.InDelta(t, 700, e.RevenueMillions, 100)
		case "AAPL":
			assert.InDelta(t, 92500, e.RevenueMillions, 2500)
		}
	}

	ids := regexp.MustCompile(`^(SNOW|NVDA|MSFT)_2025Q4_TRANSCRIPT$`)
	for _, tr := range fx.Transcripts {
		assert.Regexp(t, ids, tr.TranscriptID)
		assert.Contains(t, tr.FullTranscript, "MANAGEMENT REMARKS:")
		assert.Contains(t, tr.FullTranscript, tr.QASection)
	}

	assert.Equal(t, "Strong Buy", fx.Reports[2].Rating)
	assert.Contains(t, fx.Reports[0].FullContent, "PRICE TARGET: $280")
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a := New(99, refDate).Markets()
	b := New(99, refDate).Markets()
	assert.Equal(t, a.Earnings, b.Earnings)
	assert.Equal(t, a.Prices[:20], b.Prices[:20])
}

func TestRetailFixtures(t *testing.T) {
	v := RetailVolumes{Customers: 40, Products: 15, Stores: 5, TransactionsPerDay: 10, HistoricalDays: 30}
	fx := New(3, refDate).Retail(v)

	assert.Len(t, fx.Customers, 40)
	assert.Len(t, fx.Products, 15)
	assert.Len(t, fx.Stores, 5)
	assert.Len(t, fx.Transactions, 300)

	email := regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	for _, c := range fx.Customers {
		assert.Regexp(t, email, c.Email)
		assert.GreaterOrEqual(t, c.LifetimeValue, 0.0)
		assert.True(t, c.LastPurchaseDate >= c.AccountCreatedDate)
		assert.True(t, c.LastPurchaseDate <= formatDate(refDate))
	}
	for _, p := range fx.Products {
		assert.LessOrEqual(t, p.Cost, p.UnitPrice)
	}

	start := formatDate(refDate.AddDate(0, 0, -30))
	for _, tx := range fx.Transactions {
		assert.Greater(t, tx.TotalAmount, 0.0)
		assert.True(t, tx.TransactionDate >= start)
		assert.Contains(t, []string{"Online", "In-Store", "Mobile App"}, tx.Channel)
	}

	v.MaxTransactions = 50
	assert.Equal(t, 50, v.TransactionCount())
	assert.Len(t, New(3, refDate).Retail(v).Transactions, 50)
}
