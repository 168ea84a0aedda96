package datagen

import (
	"fmt"
	"strings"
	"time"

	"flakelab/pkg/models"
)

var marketEvents = []struct {
	id          string
	offsetDays  int
	eventType   string
	title       string
	description string
	impact      string
	sectors     []string
	tickers     []string
}{
	{
		"FED_RATE_HIKE_2024_Q1", 45, "Federal Reserve Decision",
		"Fed Raises Interest Rates by 0.75%",
		"Federal Reserve implements aggressive rate hike to combat inflation, impacting growth stocks particularly in technology sector.",
		"High", []string{"Technology", "Growth"},
		[]string{"AAPL", "MSFT", "GOOGL", "NVDA", "TSLA", "META", "SNOW"},
	},
	{
		"AI_BOOM_2024", 120, "Technology Trend",
		"Generative AI Adoption Accelerates Across Enterprise",
		"Major enterprise adoption of AI technologies drives significant revenue growth for cloud and AI-focused companies.",
		"High", []string{"Technology", "AI", "Cloud"},
		[]string{"NVDA", "MSFT", "GOOGL", "SNOW", "CRM"},
	},
	{
		"CHINA_TRADE_TENSIONS_2024", 200, "Geopolitical",
		"US-China Trade Restrictions on Semiconductor Technology",
		"New export controls on advanced semiconductor technology to China impact chip companies and their supply chains.",
		"Medium", []string{"Technology", "Semiconductors"},
		[]string{"NVDA", "AMD", "AAPL"},
	},
	{
		"CLOUD_COMPETITION_2024", 280, "Industry Competition",
		"Intensifying Cloud Infrastructure Competition",
		"Major cloud providers engage in pricing competition while new players enter specialized markets like data analytics.",
		"Medium", []string{"Technology", "Cloud"},
		[]string{"MSFT", "GOOGL", "SNOW", "ORCL"},
	},
	{
		"EV_MARKET_SHIFT_2024", 350, "Industry Disruption",
		"Electric Vehicle Market Consolidation",
		"Traditional automakers gain market share as EV market matures, affecting pure-play EV companies.",
		"High", []string{"Technology", "Automotive"},
		[]string{"TSLA"},
	},
}

// MarketEvents places the fixed macro events at offsets from rangeStart
func MarketEvents(rangeStart time.Time) []models.MarketEvent {
	rows := make([]models.MarketEvent, 0, len(marketEvents))
	for _, e := range marketEvents {
		rows = append(rows, models.MarketEvent{
			EventID:         e.id,
			EventDate:       formatDate(rangeStart.AddDate(0, 0, e.offsetDays)),
			EventType:       e.eventType,
			Title:           e.title,
			Description:     e.description,
			ImpactLevel:     e.impact,
			AffectedSectors: append([]string(nil), e.sectors...),
			AffectedTickers: append([]string(nil), e.tickers...),
			MarketReaction:  fmt.Sprintf("Market showed %s volatility in response to this event.", strings.ToLower(e.impact)),
		})
	}
	return rows
}
