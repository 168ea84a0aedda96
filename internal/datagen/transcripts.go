package datagen

import (
	"fmt"
	"strings"

	"flakelab/pkg/models"
)

// transcriptTickers get an earnings call for the latest quarter, in order
var transcriptTickers = []string{"SNOW", "NVDA", "MSFT"}

// Transcripts builds one earnings call per transcript ticker for latest
func (g *Generator) Transcripts(latest Quarter) []models.Transcript {
	rows := make([]models.Transcript, 0, len(transcriptTickers))
	for _, ticker := range transcriptTickers {
		c, _ := CompanyByTicker(ticker)
		callDate := latest.End.AddDate(0, 0, g.intn(20, 40))
		remarks, qa := callScript(ticker, c.CompanyName, latest.Label)

		rows = append(rows, models.Transcript{
			TranscriptID:      fmt.Sprintf("%s_%s_TRANSCRIPT", ticker, latest.Label),
			Ticker:            ticker,
			Quarter:           latest.Label,
			CallDate:          formatDate(callDate),
			CallType:          "Quarterly Earnings Call",
			Title:             fmt.Sprintf("%s %s Earnings Call", c.CompanyName, latest.Label),
			Participants:      "Management Team, Analysts",
			ManagementRemarks: remarks,
			QASection:         qa,
			FullTranscript: fmt.Sprintf("%s %s Earnings Call Transcript\n\nMANAGEMENT REMARKS:\n%s\n\nQ&A SECTION:\n%s",
				c.CompanyName, latest.Label, remarks, qa),
		})
	}
	return rows
}

func callScript(ticker, name, quarter string) (string, string) {
	switch ticker {
	case "SNOW":
		return paragraphs(
			fmt.Sprintf("Good afternoon and thank you for joining %s's %s earnings call. I'm pleased to report another strong quarter with revenue growth of 35%% year-over-year. Our data cloud platform continues to see exceptional adoption across enterprises globally.", name, quarter),
			"Key highlights this quarter include significant wins in the AI and machine learning space. Customers are increasingly choosing Snowflake as their foundation for AI initiatives due to our unique architecture that unifies structured and unstructured data. We've seen tremendous growth in our Cortex AI services, which are enabling customers to build intelligent applications faster.",
			"Looking ahead, we remain confident in our ability to capture the massive market opportunity in data and AI. Our product innovation continues to accelerate with new capabilities in document AI, vector search, and machine learning operations.",
		), paragraphs(
			"Q: Can you elaborate on the AI opportunity and how Snowflake is positioned?\nA: The AI revolution is fundamentally changing how organizations work with data. What we're seeing is that successful AI applications require a unified data foundation that can handle both structured and unstructured data at scale. Snowflake's architecture is uniquely positioned for this.",
			"Q: What are you seeing in terms of customer adoption of Cortex AI?\nA: Cortex AI adoption has exceeded our expectations. Customers are using our vector database capabilities, our search services, and our LLM functions to build production AI applications. The feedback has been extremely positive.",
			"Q: How should we think about the competitive landscape in data and AI?\nA: We believe our differentiated architecture gives us significant advantages. The ability to process structured and unstructured data together, combined with our Cortex AI services, creates a compelling platform for AI applications.",
		)
	case "NVDA":
		return paragraphs(
			fmt.Sprintf("Thank you for joining NVIDIA's %s earnings call. We delivered record revenue driven by exceptional demand for our AI computing platforms. Data center revenue reached new highs as enterprises accelerate their AI adoption.", quarter),
			"The AI revolution continues to drive unprecedented demand for our H100 and A100 GPUs. We're seeing strong adoption across cloud service providers, enterprises, and sovereign AI initiatives. Our Omniverse platform is enabling new workflows in digital twins and simulation.",
			"Looking forward, we expect continued strong demand for AI infrastructure as organizations deploy generative AI applications at scale.",
		), paragraphs(
			"Q: Can you provide more details on enterprise AI adoption trends?\nA: Enterprise adoption of AI is accelerating rapidly. We're seeing companies move from experimentation to production deployment of AI applications. This is driving significant infrastructure investment and demand for our platforms.",
			"Q: How are you positioned for the next phase of AI development?\nA: We continue to innovate across the full stack from chips to software. Our CUDA ecosystem remains the foundation for AI development, and we're expanding our platform capabilities to serve the growing AI market.",
		)
	default:
		return paragraphs(
			fmt.Sprintf("Good afternoon. Microsoft delivered strong results for %s with revenue growth across all business segments. Our intelligent cloud segment continues to benefit from AI adoption and Azure's growing market share.", quarter),
			"Azure AI services are seeing tremendous demand as customers build AI-powered applications. Our partnership with OpenAI has enabled us to integrate cutting-edge AI capabilities across our entire product portfolio, from Office 365 to Azure.",
			"We're particularly excited about the momentum in Azure AI and the adoption of GitHub Copilot, which is transforming how developers write code.",
		), paragraphs(
			"Q: Can you quantify the impact of AI on Azure growth?\nA: AI services are becoming a significant contributor to Azure growth. We're seeing strong adoption of Azure OpenAI Service and other AI capabilities. This is still early innings for AI adoption across enterprises.",
			"Q: How are customers using AI services in practice?\nA: Customers are building everything from customer service chatbots to code generation tools to document analysis systems. The breadth of use cases continues to expand as the technology matures.",
		)
	}
}

func paragraphs(p ...string) string {
	return strings.Join(p, "\n\n")
}
