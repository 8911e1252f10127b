package models

import (
	"encoding/json"

	"github.com/ekaya-inc/upstart-engine/pkg/jsonutil"
)

// SignalIdea is an idea generated from collected community signals.
type SignalIdea struct {
	Title             string `json:"title"`
	Problem           string `json:"problem"`
	Solution          string `json:"solution"`
	TargetMarket      string `json:"targetMarket"`
	CommunityEvidence string `json:"communityEvidence"`
	SignalStrength    int    `json:"signalStrength"`
	EstimatedARR      string `json:"estimatedARR"`
}

// UnmarshalJSON accepts a quoted signalStrength and a numeric estimatedARR.
func (s *SignalIdea) UnmarshalJSON(data []byte) error {
	type plain SignalIdea
	var flex struct {
		plain
		SignalStrength json.RawMessage `json:"signalStrength"`
		EstimatedARR   json.RawMessage `json:"estimatedARR"`
	}
	if err := json.Unmarshal(data, &flex); err != nil {
		return err
	}
	*s = SignalIdea(flex.plain)
	s.SignalStrength, _ = jsonutil.FlexibleIntValue(flex.SignalStrength)
	s.EstimatedARR = jsonutil.FlexibleStringValue(flex.EstimatedARR)
	return nil
}

// PersonalizedIdea is an idea tailored to a founder's quiz answers.
type PersonalizedIdea struct {
	Title             string   `json:"title"`
	Problem           string   `json:"problem"`
	Solution          string   `json:"solution"`
	FounderFit        string   `json:"founderFit"`
	TargetMarket      string   `json:"targetMarket"`
	RevenueModel      string   `json:"revenueModel"`
	TimeToMVP         string   `json:"timeToMVP"`
	InitialInvestment string   `json:"initialInvestment"`
	KeySuccessFactors []string `json:"keySuccessFactors"`
	EstimatedARR      string   `json:"estimatedARR"`
}

// Competitor is one entry of a research report's competitive landscape.
type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Weakness    string `json:"weakness"`
}

// ResearchReport is the market research produced for a free-text idea.
type ResearchReport struct {
	Title              string       `json:"title"`
	MarketSize         string       `json:"marketSize"`
	CompetitionLevel   string       `json:"competitionLevel"`
	OpportunityScore   int          `json:"opportunityScore"`
	FeasibilityScore   int          `json:"feasibilityScore"`
	KeyInsights        []string     `json:"keyInsights"`
	TargetMarket       string       `json:"targetMarket"`
	RevenueModel       string       `json:"revenueModel"`
	TimeToMVP          string       `json:"timeToMVP"`
	EstimatedARR       string       `json:"estimatedARR"`
	KeyTrends          []string     `json:"keyTrends"`
	CompetitorAnalysis []Competitor `json:"competitorAnalysis"`
	Risks              []string     `json:"risks"`
	NextSteps          []string     `json:"nextSteps"`
}

// UnmarshalJSON accepts quoted scores and a numeric marketSize or estimatedARR.
func (r *ResearchReport) UnmarshalJSON(data []byte) error {
	type plain ResearchReport
	var flex struct {
		plain
		MarketSize       json.RawMessage `json:"marketSize"`
		OpportunityScore json.RawMessage `json:"opportunityScore"`
		FeasibilityScore json.RawMessage `json:"feasibilityScore"`
		EstimatedARR     json.RawMessage `json:"estimatedARR"`
	}
	if err := json.Unmarshal(data, &flex); err != nil {
		return err
	}
	*r = ResearchReport(flex.plain)
	r.MarketSize = jsonutil.FlexibleStringValue(flex.MarketSize)
	r.OpportunityScore, _ = jsonutil.FlexibleIntValue(flex.OpportunityScore)
	r.FeasibilityScore, _ = jsonutil.FlexibleIntValue(flex.FeasibilityScore)
	r.EstimatedARR = jsonutil.FlexibleStringValue(flex.EstimatedARR)
	return nil
}
