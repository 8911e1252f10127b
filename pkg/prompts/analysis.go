package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SearchDatum is one keyword row passed to the analysis as search data.
type SearchDatum struct {
	Keyword      string   `json:"keyword"`
	SearchVolume *int     `json:"searchVolume"`
	Competition  *string  `json:"competition"`
	GrowthRate   *float64 `json:"growthRate"`
}

// CommunityDatum is one authored community signal passed to the analysis.
type CommunityDatum struct {
	Platform        string   `json:"platform"`
	CommunityName   string   `json:"communityName"`
	MemberCount     *int     `json:"memberCount"`
	EngagementScore *float64 `json:"engagementScore"`
	SourceURL       *string  `json:"sourceUrl"`
}

// AnalysisInput is everything the analysis prompt renders.
type AnalysisInput struct {
	Title         string
	Description   string
	Problem       string
	Solution      string
	TargetMarket  string
	RevenueModel  string
	SearchData    []SearchDatum
	CommunityData []CommunityDatum
	MarketData    []any
}

// BuildAnalysisPrompt renders the full evaluation request, including the
// JSON schema the reply must follow.
func BuildAnalysisPrompt(in AnalysisInput) string {
	var b strings.Builder

	title := in.Title
	if title == "" {
		title = "Untitled Idea"
	}

	b.WriteString("You are an expert startup analyst and venture capitalist. ")
	b.WriteString("Conduct a comprehensive evaluation of the business idea below and return a structured analysis in JSON format.\n\n")

	fmt.Fprintf(&b, "**Business Idea:** %s\n\n", title)
	fmt.Fprintf(&b, "**Description:** %s\n\n", in.Description)
	optional := []struct{ label, value string }{
		{"Problem Statement", in.Problem},
		{"Solution", in.Solution},
		{"Target Market", in.TargetMarket},
		{"Revenue Model", in.RevenueModel},
	}
	for _, f := range optional {
		if f.value != "" {
			fmt.Fprintf(&b, "**%s:** %s\n", f.label, f.value)
		}
	}

	b.WriteString("\n**Additional Data:**\n")
	fmt.Fprintf(&b, "- **Search Volume Data:** %s\n", marshalList(in.SearchData))
	fmt.Fprintf(&b, "- **Community Signals:** %s\n", marshalList(in.CommunityData))
	fmt.Fprintf(&b, "- **Market Research:** %s\n\n", marshalList(in.MarketData))

	b.WriteString(`**Task:**
Analyze the business idea and produce a complete evaluation report in JSON. The report must include:
1. **Core Scoring Metrics**: Opportunity, Problem, Feasibility, and Why Now scores (integers 1-10).
2. **Business Fit Analysis**: Revenue Potential, Execution Difficulty, Go-To-Market, and Founder Fit.
3. **Data-Driven Analysis**: Use any additional data provided above.
4. **Framework Analysis**: Apply the Value Equation, Market Matrix, A.C.P., and Value Ladder frameworks.
5. **Detailed Explanations**: Give a clear rationale for each score and analysis point.

**JSON Output Schema:**
`)
	b.WriteString("```json\n")
	b.WriteString(analysisSchema)
	b.WriteString("\n```\n\n")
	b.WriteString(`Every section is required. All scores must be integers from 1 to 10. `)
	b.WriteString(`"verdict" must be exactly one of "Highly Recommended", "Proceed with Caution" or "Not Recommended".` + "\n")
	b.WriteString("Respond with valid JSON only, following the exact schema above.")

	return b.String()
}

// marshalList renders a slice as JSON, with nil rendered as [].
func marshalList[T any](items []T) string {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

const analysisSchema = `{
  "idea_summary": {
    "title": "A concise, compelling title for the idea",
    "one_liner": "A one-sentence summary of the business idea."
  },
  "core_scoring": {
    "opportunity": {"score": 7, "rationale": "Detailed explanation for the score."},
    "problem": {"score": 8, "rationale": "Detailed explanation for the score."},
    "feasibility": {"score": 6, "rationale": "Detailed explanation for the score."},
    "why_now": {"score": 7, "rationale": "Detailed explanation for the score."}
  },
  "business_fit": {
    "revenue_potential": {
      "range": "$1M-$5M ARR",
      "rationale": "Analysis of market size, pricing, and scalability."
    },
    "execution_difficulty": {
      "score": 6,
      "mvp_timeline": "3-6 months",
      "rationale": "Assessment of technical and operational challenges."
    },
    "go_to_market": {
      "score": 7,
      "strategy": "Primary GTM strategies (e.g., SEO, content marketing, partnerships).",
      "rationale": "Analysis of customer acquisition channels and market entry."
    },
    "founder_fit": {
      "ideal_profile": "Description of the ideal founder's skills and experience.",
      "rationale": "Why this profile is suited for this idea."
    }
  },
  "framework_analysis": {
    "value_equation": {"score": 7, "analysis": "Analysis of the value proposition and customer benefits."},
    "market_matrix": {"positioning": "Niche Player", "analysis": "Analysis of tech novelty vs. market category."},
    "acp_framework": {
      "audience_score": 7,
      "community_score": 6,
      "product_score": 8,
      "analysis": "Analysis of Audience, Community, and Product fit."
    },
    "value_ladder": {
      "bait": "Initial free offering.",
      "frontend": "Low-cost introductory product.",
      "core_offer": "Main product/service.",
      "backend": "High-ticket upsell.",
      "continuity": "Recurring revenue component.",
      "analysis": "Analysis of the monetization strategy and customer journey."
    }
  },
  "data_insights": {
    "search_trends": "Insights from search volume data.",
    "community_feedback": "Insights from community signals.",
    "market_data_summary": "Summary of market research findings."
  },
  "final_recommendation": {
    "verdict": "Highly Recommended",
    "summary": "A concluding summary of the idea's potential and key risks."
  }
}`
