package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/upstart-engine/pkg/apperrors"
	"github.com/ekaya-inc/upstart-engine/pkg/llm"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

type analysisDeps struct {
	ideas    *mockIdeaRepo
	analyses *mockAnalysisRepo
	keywords *mockKeywordRepo
	signals  *mockSignalRepo
	llm      *llm.MockLLMClient
	clock    *fakeClock
	svc      *analysisService
}

func newAnalysisDeps(logger *zap.Logger) *analysisDeps {
	d := &analysisDeps{
		ideas:    newMockIdeaRepo(),
		analyses: &mockAnalysisRepo{},
		keywords: &mockKeywordRepo{},
		signals:  &mockSignalRepo{},
		llm:      llm.NewMockLLMClient(),
		clock:    &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	d.svc = NewAnalysisService(d.ideas, d.analyses, d.keywords, d.signals, d.llm, AnalysisServiceConfig{
		CacheWindow: time.Hour,
		Temperature: 0.3,
		Now:         d.clock.Now,
	}, logger).(*analysisService)
	d.svc.sleep = func(context.Context, time.Duration) error { return nil }
	return d
}

func TestParseAnalysis(t *testing.T) {
	result, err := ParseAnalysis(analysisReply(validAnalysisResult()))
	require.NoError(t, err)
	assert.Equal(t, 8, result.CoreScoring.Opportunity.Score)
	assert.Equal(t, models.VerdictHighlyRecommended, result.FinalRecommendation.Verdict)
}

func TestParseAnalysis_Rejections(t *testing.T) {
	missingFit := validAnalysisResult()
	missingFit.BusinessFit = nil

	outOfRange := validAnalysisResult()
	outOfRange.CoreScoring.WhyNow.Score = 11

	badVerdict := validAnalysisResult()
	badVerdict.FinalRecommendation.Verdict = "Maybe"

	stringScore := strings.Replace(analysisReply(validAnalysisResult()), `"score":8`, `"score":"8"`, 1)

	tests := []struct {
		name    string
		reply   string
		stage   AnalysisStage
		problem string
	}{
		{"no json", "I cannot analyze this idea.", StageExtract, ""},
		{"string score", stringScore, StageDecode, ""},
		{"missing section", analysisReply(missingFit), StageValidate, "business_fit is missing"},
		{"score out of range", analysisReply(outOfRange), StageValidate, "core_scoring.why_now.score 11 is outside 1-10"},
		{"unknown verdict", analysisReply(badVerdict), StageValidate, "final_recommendation.verdict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalysis(tt.reply)
			var ae *AnalysisError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.stage, ae.Stage)
			if tt.problem != "" {
				assert.Contains(t, strings.Join(ae.Missing, "\n"), tt.problem)
			}
		})
	}
}

func TestAnalysisError_Message(t *testing.T) {
	err := &AnalysisError{Stage: StageValidate, Missing: []string{"a is missing", "b is missing"}}
	assert.Equal(t, "analysis validate failed: a is missing; b is missing", err.Error())

	cause := errors.New("boom")
	wrapped := &AnalysisError{Stage: StageDecode, Cause: cause}
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "analysis decode failed: boom", wrapped.Error())
}

func TestAnalysisService_AnalyzePersists(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	idea := d.ideas.add(&models.Idea{Title: "Invoice Chaser", Description: "Chases invoices"})
	ctx := context.Background()
	require.NoError(t, d.keywords.Create(ctx, &models.Keyword{IdeaID: idea.ID, Keyword: "invoicing"}))
	require.NoError(t, d.signals.Create(ctx, &models.IdeaCommunitySignal{IdeaID: idea.ID, Platform: "reddit", CommunityName: "r/freelance"}))
	d.llm.Responses = []string{analysisReply(validAnalysisResult())}

	out, err := d.svc.Analyze(ctx, idea.ID)
	require.NoError(t, err)

	assert.False(t, out.Cached)
	a := out.Analysis
	assert.Equal(t, idea.ID, a.IdeaID)
	assert.Equal(t, 8, a.OpportunityScore)
	assert.Equal(t, 7, a.ProblemScore)
	assert.Equal(t, 6, a.FeasibilityScore)
	assert.Equal(t, 5, a.TimingScore)
	assert.Equal(t, 4, a.ExecutionDifficulty)
	assert.Equal(t, "$1M - $10M ARR", a.RevenueRange)
	assert.Equal(t, "MEDIUM", a.CompetitionLevel)
	assert.Nil(t, a.MarketSize)
	assert.Equal(t, d.clock.Now(), a.CreatedAt)
	assert.Equal(t, 1, d.analyses.count())

	require.Len(t, d.llm.Options, 1)
	require.NotNil(t, d.llm.Options[0].Temperature)
	assert.Equal(t, 0.3, *d.llm.Options[0].Temperature)
	assert.Equal(t, 4000, d.llm.Options[0].MaxTokens)
	assert.Contains(t, d.llm.Prompts[0], "Invoice Chaser")
	assert.Contains(t, d.llm.Prompts[0], "invoicing")
	assert.Contains(t, d.llm.Prompts[0], "r/freelance")
}

func TestAnalysisService_CacheWindow(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	idea := d.ideas.add(&models.Idea{Title: "Cached", Description: "d"})
	reply := analysisReply(validAnalysisResult())
	d.llm.GenerateResponseFunc = func(context.Context, string, llm.GenerateOptions) (*llm.GenerateResponseResult, error) {
		return &llm.GenerateResponseResult{Content: reply}, nil
	}
	ctx := context.Background()

	first, err := d.svc.Analyze(ctx, idea.ID)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	d.clock.Advance(59 * time.Minute)
	second, err := d.svc.Analyze(ctx, idea.ID)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Analysis.ID, second.Analysis.ID)
	assert.Equal(t, 1, d.llm.Calls())

	d.clock.Advance(2 * time.Minute)
	third, err := d.svc.Analyze(ctx, idea.ID)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, d.llm.Calls())
	assert.Equal(t, 2, d.analyses.count())
}

func TestAnalysisService_CacheDisabled(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	d.svc.config.CacheWindow = 0
	idea := d.ideas.add(&models.Idea{Title: "Uncached", Description: "d"})
	reply := analysisReply(validAnalysisResult())
	d.llm.Responses = []string{reply, reply}

	for range 2 {
		out, err := d.svc.Analyze(context.Background(), idea.ID)
		require.NoError(t, err)
		assert.False(t, out.Cached)
	}
	assert.Equal(t, 2, d.llm.Calls())
}

func TestAnalysisService_RejectedReplyPersistsNothing(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := newAnalysisDeps(zap.New(core))
	idea := d.ideas.add(&models.Idea{Title: "Bad", Description: "d"})

	missingFit := validAnalysisResult()
	missingFit.BusinessFit = nil
	stringScore := strings.Replace(analysisReply(validAnalysisResult()), `"score":8`, `"score":"8"`, 1)
	d.llm.Responses = []string{stringScore, analysisReply(missingFit)}

	_, err := d.svc.Analyze(context.Background(), idea.ID)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageDecode, ae.Stage)

	_, err = d.svc.Analyze(context.Background(), idea.ID)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, StageValidate, ae.Stage)

	assert.Equal(t, 0, d.analyses.count())
	assert.Equal(t, 2, logs.FilterMessage("Rejected analysis response").Len())
}

func TestAnalysisService_LLMFailure(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	idea := d.ideas.add(&models.Idea{Title: "Down", Description: "d"})
	d.llm.GenerateResponseFunc = func(context.Context, string, llm.GenerateOptions) (*llm.GenerateResponseResult, error) {
		return nil, llm.NewError(llm.ErrorTypeCircuitOpen, "circuit open", false, nil)
	}

	_, err := d.svc.Analyze(context.Background(), idea.ID)
	require.Error(t, err)
	assert.Equal(t, llm.ErrorTypeCircuitOpen, llm.GetErrorType(err))
	assert.Equal(t, 0, d.analyses.count())
}

func TestAnalysisService_UnknownIdea(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	_, err := d.svc.Analyze(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, d.llm.Calls())
}

func TestAnalysisService_ConcurrentCallsShareOneRequest(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	idea := d.ideas.add(&models.Idea{Title: "Popular", Description: "d"})

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	reply := analysisReply(validAnalysisResult())
	d.llm.GenerateResponseFunc = func(context.Context, string, llm.GenerateOptions) (*llm.GenerateResponseResult, error) {
		started <- struct{}{}
		<-release
		return &llm.GenerateResponseResult{Content: reply}, nil
	}

	const callers = 3
	var wg sync.WaitGroup
	results := make([]*AnalysisOutcome, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = d.svc.Analyze(context.Background(), idea.ID)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.svc.Analyze(context.Background(), idea.ID)
		}(i)
	}
	// Let the followers reach the in-flight call before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Analysis.ID, results[i].Analysis.ID)
	}
	assert.Equal(t, 1, d.llm.Calls())
	assert.Equal(t, 1, d.analyses.count())
}

func TestAnalysisService_BatchAnalyze(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	base := time.Now()
	first := d.ideas.add(&models.Idea{Title: "First", Description: "d", CreatedAt: base})
	second := d.ideas.add(&models.Idea{Title: "Second", Description: "d", CreatedAt: base.Add(time.Minute)})
	d.ideas.add(&models.Idea{Title: "Third", Description: "d", CreatedAt: base.Add(2 * time.Minute)})

	var sleeps []time.Duration
	d.svc.sleep = func(_ context.Context, dur time.Duration) error {
		sleeps = append(sleeps, dur)
		return nil
	}
	d.llm.Responses = []string{"not json", analysisReply(validAnalysisResult())}

	report, err := d.svc.BatchAnalyze(context.Background(), 2, 2*time.Second)
	require.NoError(t, err)

	require.Len(t, report.Items, 2)
	assert.Equal(t, first.ID, report.Items[0].IdeaID)
	assert.Contains(t, report.Items[0].Error, "extract")
	assert.Equal(t, second.ID, report.Items[1].IdeaID)
	assert.Equal(t, 8, report.Items[1].Score)
	assert.Empty(t, report.Items[1].Error)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeps)
	assert.Equal(t, 1, d.analyses.count())
}

func TestAnalysisService_BatchAnalyzeInterrupted(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	base := time.Now()
	d.ideas.add(&models.Idea{Title: "A", Description: "d", CreatedAt: base})
	d.ideas.add(&models.Idea{Title: "B", Description: "d", CreatedAt: base.Add(time.Minute)})
	d.svc.sleep = func(context.Context, time.Duration) error { return context.Canceled }
	reply := analysisReply(validAnalysisResult())
	d.llm.Responses = []string{reply, reply}

	report, err := d.svc.BatchAnalyze(context.Background(), 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, report.Items, 1)
	assert.Equal(t, 1, d.llm.Calls())
}

func TestAnalysisService_ExtractKeywords(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	idea := d.ideas.add(&models.Idea{Title: "Kw", Description: "Invoice reminders for freelancers"})
	d.llm.Responses = []string{`Sure: ["invoicing", "freelancers", " Invoicing ", "", "reminders"]`}

	keywords, err := d.svc.ExtractKeywords(context.Background(), idea.ID)
	require.NoError(t, err)

	terms := make([]string, len(keywords))
	for i, k := range keywords {
		terms[i] = k.Keyword
		assert.Equal(t, idea.ID, k.IdeaID)
	}
	assert.Equal(t, []string{"invoicing", "freelancers", "reminders"}, terms)
	assert.Len(t, d.keywords.keywords, 3)
	assert.Equal(t, 200, d.llm.Options[0].MaxTokens)
	assert.Contains(t, d.llm.Prompts[0], "Invoice reminders for freelancers")
}

func TestAnalysisService_ExtractKeywordsWithoutArray(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	idea := d.ideas.add(&models.Idea{Title: "Kw", Description: "d"})
	d.llm.Responses = []string{"invoicing, freelancers"}

	keywords, err := d.svc.ExtractKeywords(context.Background(), idea.ID)
	require.NoError(t, err)
	assert.Empty(t, keywords)
	assert.Empty(t, d.keywords.keywords)
}

func TestAnalysisService_ExtractKeywordsLLMError(t *testing.T) {
	d := newAnalysisDeps(zap.NewNop())
	idea := d.ideas.add(&models.Idea{Title: "Kw", Description: "d"})
	d.llm.GenerateResponseFunc = func(context.Context, string, llm.GenerateOptions) (*llm.GenerateResponseResult, error) {
		return nil, errors.New("connection reset")
	}

	_, err := d.svc.ExtractKeywords(context.Background(), idea.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract keywords")
}
