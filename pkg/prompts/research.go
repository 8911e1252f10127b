package prompts

import "fmt"

// BuildResearchPrompt asks for a market research report on a free-text idea.
func BuildResearchPrompt(idea string) string {
	return fmt.Sprintf(`Conduct a comprehensive analysis of this startup idea:

%q

Cover:

1. Market Analysis: market size, target market, growth trends and opportunities.
2. Competition Analysis: 3-4 key competitors, their strengths and weaknesses, room for differentiation.
3. Business Viability: revenue model, time to MVP, initial investment, revenue potential (ARR estimate).
4. Feasibility Assessment: technical feasibility (1-10), market opportunity (1-10), key success factors, major risks.
5. Strategic Recommendations: next validation steps, trends to leverage, actionable insights.

Format the response as JSON with exactly this structure:
{
  "title": "Brief title for the idea",
  "marketSize": "Market size estimate (e.g., '$5B global market')",
  "competitionLevel": "Low" | "Medium" | "High",
  "opportunityScore": number (1-10),
  "feasibilityScore": number (1-10),
  "keyInsights": ["insight1", "insight2", "insight3"],
  "targetMarket": "Target market description",
  "revenueModel": "Revenue model description",
  "timeToMVP": "Time estimate (e.g., '4-6 months')",
  "estimatedARR": "Revenue estimate (e.g., '$500K - $2M ARR')",
  "keyTrends": ["trend1", "trend2", "trend3"],
  "competitorAnalysis": [
    {"name": "Competitor name", "description": "What they do", "weakness": "Their weakness or your opening"}
  ],
  "risks": ["risk1", "risk2", "risk3"],
  "nextSteps": ["step1", "step2", "step3", "step4"]
}

Be specific, realistic and actionable. Focus on practical insights that help an entrepreneur make informed decisions.`, idea)
}
