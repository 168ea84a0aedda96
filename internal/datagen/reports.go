package datagen

import (
	"fmt"
	"strings"

	"flakelab/pkg/models"
)

type reportSeed struct {
	id, title, author, firm string
	// quarterBack selects quarters[len-quarterBack] as the dating anchor
	quarterBack int
	offsetDays  int
	reportType  string
	tickers     []string
	theme       string
	thesis      string
	risks       string
}

var marketsReports = []reportSeed{
	{
		id:          "RPT_AI_ENTERPRISE_2024_Q4",
		title:       "The Enterprise AI Revolution: Cloud Infrastructure Winners",
		author:      "Sarah Chen",
		firm:        "Tech Research Partners",
		quarterBack: 2,
		offsetDays:  10,
		reportType:  "Thematic Research",
		tickers:     []string{"NVDA", "MSFT", "SNOW", "GOOGL"},
		theme:       "Artificial Intelligence",
		thesis:      "Enterprise AI adoption is accelerating rapidly, creating unprecedented demand for specialized infrastructure. Companies with proprietary AI capabilities and robust cloud platforms are positioned to capture disproportionate value.",
		risks:       "Regulatory scrutiny, competition from open-source alternatives, high capital requirements for AI infrastructure.",
	},
	{
		id:          "RPT_CLOUD_DATA_2024_Q3",
		title:       "Data Cloud Transformation: Beyond Traditional Warehousing",
		author:      "Michael Rodriguez",
		firm:        "Financial Tech Insights",
		quarterBack: 3,
		offsetDays:  15,
		reportType:  "Sector Analysis",
		tickers:     []string{"SNOW", "MSFT", "ORCL", "GOOGL"},
		theme:       "Data Analytics",
		thesis:      "Organizations are moving beyond traditional data warehousing to comprehensive data cloud platforms. Modern architecture enables real-time analytics and AI/ML workloads at scale.",
		risks:       "Intense competition, margin pressure from pricing wars, integration complexity.",
	},
	{
		id:          "RPT_SNOWFLAKE_DEEP_2024",
		title:       "Snowflake: AI-Native Data Cloud Leadership",
		author:      "Jennifer Liu",
		firm:        "Growth Equity Research",
		quarterBack: 1,
		offsetDays:  5,
		reportType:  "Company Deep Dive",
		tickers:     []string{"SNOW"},
		theme:       "Data Cloud Platform",
		thesis:      "Snowflake's architecture uniquely positions it for the AI era. Native support for unstructured data, vector databases, and ML workloads creates competitive moats in the evolving data landscape.",
		risks:       "Hyperscaler competition, customer concentration, execution on AI roadmap.",
	},
}

// MarketsReports builds the three thematic reports, dated relative to the
// trailing quarters. Fewer than three quarters clamps to the oldest.
func MarketsReports(quarters []Quarter) []models.ResearchReport {
	rows := make([]models.ResearchReport, 0, len(marketsReports))
	for _, s := range marketsReports {
		idx := len(quarters) - s.quarterBack
		if idx < 0 {
			idx = 0
		}
		target, rating := ratingFor(s.tickers[0])
		r := models.ResearchReport{
			ReportID:         s.id,
			Title:            s.title,
			Author:           s.author,
			Firm:             s.firm,
			PublishDate:      formatDate(quarters[idx].End.AddDate(0, 0, s.offsetDays)),
			ReportType:       s.reportType,
			Sector:           "Technology",
			TickersCovered:   append([]string(nil), s.tickers...),
			Theme:            s.theme,
			InvestmentThesis: s.thesis,
			KeyRisks:         s.risks,
			PriceTarget:      target,
			Rating:           rating,
			ReportSummary:    fmt.Sprintf("Analysis of %s trends across technology sector", s.theme),
		}
		r.FullContent = marketsContent(r)
		rows = append(rows, r)
	}
	return rows
}

func ratingFor(ticker string) (float64, string) {
	switch ticker {
	case "SNOW":
		return 180, "Buy"
	case "NVDA":
		return 850, "Strong Buy"
	default:
		return 200, "Buy"
	}
}

func marketsContent(r models.ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", r.Title)
	fmt.Fprintf(&b, "Executive Summary:\n%s\n\n", r.InvestmentThesis)
	b.WriteString("Investment Thesis:\nOur analysis indicates strong fundamentals driving this theme, with particular strength in enterprise adoption rates and technological barriers to entry.\n\n")
	fmt.Fprintf(&b, "Key Risks:\n%s\n\n", r.KeyRisks)
	fmt.Fprintf(&b, "Companies Covered: %s\n\n", strings.Join(r.TickersCovered, ", "))
	fmt.Fprintf(&b, "Recommendation: %s\n", r.Rating)
	fmt.Fprintf(&b, "Price Target: $%s", formatTarget(r.PriceTarget))
	return b.String()
}

var dualToolReports = []struct {
	reportSeed
	rating          string
	target          float64
	marketAnalysis  string
	companyAnalysis string
}{
	{
		reportSeed: reportSeed{
			id:         "RPT_AI_ENTERPRISE_2024",
			title:      "The Enterprise AI Revolution: Infrastructure Winners",
			author:     "Sarah Chen",
			firm:       "Tech Research Partners",
			offsetDays: 10,
			tickers:    []string{"NVDA", "MSFT", "GOOGL", "SNOW"},
			theme:      "Artificial Intelligence",
			thesis:     "Enterprise AI adoption is accelerating rapidly creating unprecedented demand for specialized infrastructure and platforms.",
			risks:      "Regulatory scrutiny, competition from open source alternatives, high capital requirements for AI infrastructure development.",
		},
		rating:          "Buy",
		target:          280,
		marketAnalysis:  "The global AI market is expected to reach $1.8 trillion by 2030. Enterprise adoption is moving from experimentation to production deployment, driving significant infrastructure investment.",
		companyAnalysis: "NVIDIA leads in AI chips with H100 dominance. Microsoft Azure AI services seeing strong growth. Snowflake positioned well for AI data needs with Cortex platform.",
	},
	{
		reportSeed: reportSeed{
			id:         "RPT_DATA_CLOUD_2024",
			title:      "Data Cloud Transformation: Beyond Traditional Warehousing",
			author:     "Michael Rodriguez",
			firm:       "Financial Tech Insights",
			offsetDays: 15,
			tickers:    []string{"SNOW", "MSFT", "ORCL"},
			theme:      "Data Analytics",
			thesis:     "Organizations are moving beyond traditional data warehousing to comprehensive data cloud platforms that enable real-time analytics and AI workloads.",
			risks:      "Intense competition from hyperscale cloud providers, margin pressure from pricing wars, complexity of data migration projects.",
		},
		rating:          "Buy",
		target:          200,
		marketAnalysis:  "The data cloud market is experiencing rapid transformation as organizations seek unified platforms for structured and unstructured data processing.",
		companyAnalysis: "Snowflake leads in cloud-native architecture. Microsoft Azure Synapse gaining traction. Oracle modernizing with Autonomous Database offerings.",
	},
	{
		reportSeed: reportSeed{
			id:         "RPT_SNOWFLAKE_DEEP_2024",
			title:      "Snowflake: AI-Native Data Cloud Leadership",
			author:     "Jennifer Liu",
			firm:       "Growth Equity Research",
			offsetDays: 5,
			tickers:    []string{"SNOW"},
			theme:      "Data Cloud Platform",
			thesis:     "Snowflake architecture uniquely positions it for the AI era with native support for unstructured data, vector databases, and ML workloads creating competitive advantages.",
			risks:      "Hyperscaler competition from AWS, Google, Microsoft. Customer concentration risks. Execution challenges on AI roadmap expansion.",
		},
		rating:          "Strong Buy",
		target:          220,
		marketAnalysis:  "The convergence of data and AI is creating new market opportunities. Organizations need platforms that can handle both traditional analytics and modern AI workloads seamlessly.",
		companyAnalysis: "Snowflake Cortex AI services differentiating the platform. Strong customer adoption of new AI capabilities. Expanding use cases beyond traditional data warehousing into AI and ML.",
	},
}

// DualToolReports builds the search-oriented reports for the latest quarter.
// FullContent carries the full_report text.
func DualToolReports(latest Quarter) []models.ResearchReport {
	rows := make([]models.ResearchReport, 0, len(dualToolReports))
	for _, s := range dualToolReports {
		r := models.ResearchReport{
			ReportID:         s.id,
			Title:            s.title,
			Author:           s.author,
			Firm:             s.firm,
			PublishDate:      formatDate(latest.End.AddDate(0, 0, s.offsetDays)),
			Sector:           "Technology",
			TickersCovered:   append([]string(nil), s.tickers...),
			Theme:            s.theme,
			InvestmentThesis: s.thesis,
			KeyRisks:         s.risks,
			PriceTarget:      s.target,
			Rating:           s.rating,
			MarketAnalysis:   s.marketAnalysis,
			CompanyAnalysis:  s.companyAnalysis,
		}
		r.FullContent = fullReport(r)
		rows = append(rows, r)
	}
	return rows
}

func fullReport(r models.ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", r.Title)
	fmt.Fprintf(&b, "Author: %s, %s\n", r.Author, r.Firm)
	fmt.Fprintf(&b, "Date: %s\n", r.PublishDate)
	fmt.Fprintf(&b, "Companies Covered: %s\n\n", strings.Join(r.TickersCovered, ", "))
	fmt.Fprintf(&b, "EXECUTIVE SUMMARY:\n%s\n\n", r.InvestmentThesis)
	fmt.Fprintf(&b, "INVESTMENT THESIS:\n%s\n\n", r.MarketAnalysis)
	fmt.Fprintf(&b, "COMPANY ANALYSIS:\n%s\n\n", r.CompanyAnalysis)
	fmt.Fprintf(&b, "KEY RISKS:\n%s\n\n", r.KeyRisks)
	fmt.Fprintf(&b, "RECOMMENDATION: %s\n", r.Rating)
	fmt.Fprintf(&b, "PRICE TARGET: $%s\n\n", formatTarget(r.PriceTarget))
	fmt.Fprintf(&b, "This report provides detailed analysis of investment opportunities in the %s sector with specific focus on infrastructure and platform companies positioned to benefit from technological transformation and enterprise adoption trends.", r.Theme)
	return b.String()
}

func formatTarget(v float64) string {
	return fmt.Sprintf("%g", v)
}
