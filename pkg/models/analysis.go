package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Analysis is a persisted LLM evaluation of an idea. Rows are never updated;
// the most recent one wins for display.
type Analysis struct {
	ID                  uuid.UUID       `json:"id"`
	IdeaID              uuid.UUID       `json:"ideaId"`
	OpportunityScore    int             `json:"opportunityScore"`
	ProblemScore        int             `json:"problemScore"`
	FeasibilityScore    int             `json:"feasibilityScore"`
	TimingScore         int             `json:"timingScore"`
	RevenueRange        string          `json:"revenueRange"`
	ExecutionDifficulty int             `json:"executionDifficulty"`
	MarketSize          *string         `json:"marketSize"`
	CompetitionLevel    string          `json:"competitionLevel"`
	AnalysisData        *AnalysisResult `json:"analysisData"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// Verdict is the final recommendation of an analysis.
type Verdict string

const (
	VerdictHighlyRecommended  Verdict = "Highly Recommended"
	VerdictProceedWithCaution Verdict = "Proceed with Caution"
	VerdictNotRecommended     Verdict = "Not Recommended"
)

// IsValid checks if the verdict is one of the allowed values.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictHighlyRecommended, VerdictProceedWithCaution, VerdictNotRecommended:
		return true
	}
	return false
}

// AnalysisResult is the structured evaluation returned by the model.
// Section pointers are nil when the model omitted them.
type AnalysisResult struct {
	IdeaSummary         *IdeaSummaryBlock    `json:"idea_summary"`
	CoreScoring         *CoreScoring         `json:"core_scoring"`
	BusinessFit         *BusinessFit         `json:"business_fit"`
	FrameworkAnalysis   *FrameworkAnalysis   `json:"framework_analysis"`
	DataInsights        *DataInsights        `json:"data_insights"`
	FinalRecommendation *FinalRecommendation `json:"final_recommendation"`
}

type IdeaSummaryBlock struct {
	Title    string `json:"title"`
	OneLiner string `json:"one_liner"`
}

type ScoredRationale struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

type CoreScoring struct {
	Opportunity *ScoredRationale `json:"opportunity"`
	Problem     *ScoredRationale `json:"problem"`
	Feasibility *ScoredRationale `json:"feasibility"`
	WhyNow      *ScoredRationale `json:"why_now"`
}

type BusinessFit struct {
	RevenuePotential    *RevenuePotential     `json:"revenue_potential"`
	ExecutionDifficulty *ExecutionDifficulty  `json:"execution_difficulty"`
	GoToMarket          *GoToMarket           `json:"go_to_market"`
	FounderFit          *FounderFitAssessment `json:"founder_fit"`
}

type RevenuePotential struct {
	Range        string `json:"range"`
	Rationale    string `json:"rationale"`
	EstimatedARR string `json:"estimated_arr,omitempty"`
}

type ExecutionDifficulty struct {
	Score       int    `json:"score"`
	MVPTimeline string `json:"mvp_timeline"`
	Rationale   string `json:"rationale"`
}

type GoToMarket struct {
	Score     int    `json:"score"`
	Strategy  string `json:"strategy"`
	Rationale string `json:"rationale"`
}

type FounderFitAssessment struct {
	IdealProfile string `json:"ideal_profile"`
	Rationale    string `json:"rationale"`
}

type FrameworkAnalysis struct {
	ValueEquation *ValueEquation `json:"value_equation"`
	MarketMatrix  *MarketMatrix  `json:"market_matrix"`
	ACPFramework  *ACPFramework  `json:"acp_framework"`
	ValueLadder   *ValueLadder   `json:"value_ladder"`
}

type ValueEquation struct {
	Score    int    `json:"score"`
	Analysis string `json:"analysis"`
}

type MarketMatrix struct {
	Positioning string `json:"positioning"`
	Analysis    string `json:"analysis"`
}

type ACPFramework struct {
	AudienceScore  int    `json:"audience_score"`
	CommunityScore int    `json:"community_score"`
	ProductScore   int    `json:"product_score"`
	Analysis       string `json:"analysis"`
}

type ValueLadder struct {
	Bait       string `json:"bait"`
	Frontend   string `json:"frontend"`
	CoreOffer  string `json:"core_offer"`
	Backend    string `json:"backend"`
	Continuity string `json:"continuity"`
	Analysis   string `json:"analysis"`
}

type DataInsights struct {
	SearchTrends      string `json:"search_trends"`
	CommunityFeedback string `json:"community_feedback"`
	MarketDataSummary string `json:"market_data_summary"`
}

type FinalRecommendation struct {
	Verdict Verdict `json:"verdict"`
	Summary string  `json:"summary"`
}

// Problems lists every missing section and out-of-range value.
// An empty result means the analysis can be persisted.
func (r *AnalysisResult) Problems() []string {
	var problems []string
	missing := func(path string) {
		problems = append(problems, path+" is missing")
	}
	score := func(path string, s *ScoredRationale) {
		if s == nil {
			missing(path)
			return
		}
		if s.Score < 1 || s.Score > 10 {
			problems = append(problems, fmt.Sprintf("%s.score %d is outside 1-10", path, s.Score))
		}
	}

	if r.IdeaSummary == nil {
		missing("idea_summary")
	}

	if r.CoreScoring == nil {
		missing("core_scoring")
	} else {
		score("core_scoring.opportunity", r.CoreScoring.Opportunity)
		score("core_scoring.problem", r.CoreScoring.Problem)
		score("core_scoring.feasibility", r.CoreScoring.Feasibility)
		score("core_scoring.why_now", r.CoreScoring.WhyNow)
	}

	if r.BusinessFit == nil {
		missing("business_fit")
	} else {
		bf := r.BusinessFit
		if bf.RevenuePotential == nil {
			missing("business_fit.revenue_potential")
		}
		if bf.ExecutionDifficulty == nil {
			missing("business_fit.execution_difficulty")
		} else if s := bf.ExecutionDifficulty.Score; s < 1 || s > 10 {
			problems = append(problems, fmt.Sprintf("business_fit.execution_difficulty.score %d is outside 1-10", s))
		}
		if bf.GoToMarket == nil {
			missing("business_fit.go_to_market")
		}
		if bf.FounderFit == nil {
			missing("business_fit.founder_fit")
		}
	}

	if r.FrameworkAnalysis == nil {
		missing("framework_analysis")
	}
	if r.DataInsights == nil {
		missing("data_insights")
	}

	if r.FinalRecommendation == nil {
		missing("final_recommendation")
	} else if !r.FinalRecommendation.Verdict.IsValid() {
		problems = append(problems, fmt.Sprintf("final_recommendation.verdict %q is not an allowed value", r.FinalRecommendation.Verdict))
	}

	return problems
}

// RevenueRange returns the model's revenue range, or "" when absent.
func (r *AnalysisResult) RevenueRange() string {
	if r == nil || r.BusinessFit == nil || r.BusinessFit.RevenuePotential == nil {
		return ""
	}
	return r.BusinessFit.RevenuePotential.Range
}
