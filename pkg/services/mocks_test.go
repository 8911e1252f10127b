package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/upstart-engine/pkg/apperrors"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/repositories"
)

// ============================================================================
// Mock Implementations for Service Tests
// ============================================================================

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	ensureErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (m *mockUserRepo) add(email string) *models.User {
	u := &models.User{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) EnsureByEmail(ctx context.Context, email string, name *string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensureErr != nil {
		return nil, m.ensureErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	u := &models.User{ID: uuid.New(), Email: email, Name: name, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

type mockIdeaRepo struct {
	mu        sync.Mutex
	ideas     map[uuid.UUID]*models.Idea
	summaries []*models.IdeaSummary
	updates   int
	listLimit int
	listOff   int
	createErr error
}

func newMockIdeaRepo() *mockIdeaRepo {
	return &mockIdeaRepo{ideas: map[uuid.UUID]*models.Idea{}}
}

func (m *mockIdeaRepo) add(idea *models.Idea) *models.Idea {
	if idea.ID == uuid.Nil {
		idea.ID = uuid.New()
	}
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = time.Now()
	}
	m.ideas[idea.ID] = idea
	return idea
}

func (m *mockIdeaRepo) Create(ctx context.Context, idea *models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	idea.ID = uuid.New()
	idea.CreatedAt = time.Now()
	idea.UpdatedAt = idea.CreatedAt
	copied := *idea
	m.ideas[idea.ID] = &copied
	return nil
}

func (m *mockIdeaRepo) Get(ctx context.Context, id uuid.UUID) (*models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idea, ok := m.ideas[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *idea
	return &copied, nil
}

func (m *mockIdeaRepo) ListSummaries(ctx context.Context, limit, offset int) ([]*models.IdeaSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listLimit, m.listOff = limit, offset
	return m.summaries, nil
}

func (m *mockIdeaRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.summaries) > 0 {
		return len(m.summaries), nil
	}
	return len(m.ideas), nil
}

func (m *mockIdeaRepo) Update(ctx context.Context, idea *models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[idea.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.updates++
	copied := *idea
	m.ideas[idea.ID] = &copied
	return nil
}

func (m *mockIdeaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.ideas, id)
	return nil
}

func (m *mockIdeaRepo) ListWithoutAnalyses(ctx context.Context, limit int) ([]*models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ideas := make([]*models.Idea, 0, len(m.ideas))
	for _, idea := range m.ideas {
		ideas = append(ideas, idea)
	}
	sort.Slice(ideas, func(i, j int) bool { return ideas[i].CreatedAt.Before(ideas[j].CreatedAt) })
	if len(ideas) > limit {
		ideas = ideas[:limit]
	}
	return ideas, nil
}

type mockAnalysisRepo struct {
	mu       sync.Mutex
	analyses []*models.Analysis
	creates  int
}

func (m *mockAnalysisRepo) Create(ctx context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	m.creates++
	m.analyses = append(m.analyses, a)
	return nil
}

func (m *mockAnalysisRepo) GetLatest(ctx context.Context, ideaID uuid.UUID) (*models.Analysis, error) {
	return m.GetLatestSince(ctx, ideaID, time.Time{})
}

func (m *mockAnalysisRepo) GetLatestSince(ctx context.Context, ideaID uuid.UUID, since time.Time) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Analysis
	for _, a := range m.analyses {
		if a.IdeaID != ideaID || a.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return latest, nil
}

func (m *mockAnalysisRepo) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Analysis{}
	for _, a := range m.analyses {
		if a.IdeaID == ideaID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockAnalysisRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

type mockKeywordRepo struct {
	mu       sync.Mutex
	keywords []*models.Keyword
}

func (m *mockKeywordRepo) Create(ctx context.Context, k *models.Keyword) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k.ID = uuid.New()
	m.keywords = append(m.keywords, k)
	return nil
}

func (m *mockKeywordRepo) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Keyword{}
	for _, k := range m.keywords {
		if k.IdeaID == ideaID {
			out = append(out, k)
		}
	}
	return out, nil
}

type mockSignalRepo struct {
	mu      sync.Mutex
	signals []*models.IdeaCommunitySignal
}

func (m *mockSignalRepo) Create(ctx context.Context, s *models.IdeaCommunitySignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	m.signals = append(m.signals, s)
	return nil
}

func (m *mockSignalRepo) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.IdeaCommunitySignal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.IdeaCommunitySignal{}
	for _, s := range m.signals {
		if s.IdeaID == ideaID {
			out = append(out, s)
		}
	}
	return out, nil
}

var (
	_ repositories.UserRepository            = (*mockUserRepo)(nil)
	_ repositories.IdeaRepository            = (*mockIdeaRepo)(nil)
	_ repositories.AnalysisRepository        = (*mockAnalysisRepo)(nil)
	_ repositories.KeywordRepository         = (*mockKeywordRepo)(nil)
	_ repositories.CommunitySignalRepository = (*mockSignalRepo)(nil)
)

// ============================================================================
// Fixtures
// ============================================================================

// validAnalysisResult is a complete model reply that passes validation.
func validAnalysisResult() *models.AnalysisResult {
	score := func(n int) *models.ScoredRationale {
		return &models.ScoredRationale{Score: n, Rationale: "because"}
	}
	return &models.AnalysisResult{
		IdeaSummary: &models.IdeaSummaryBlock{Title: "Invoice Chaser", OneLiner: "Gets invoices paid"},
		CoreScoring: &models.CoreScoring{
			Opportunity: score(8),
			Problem:     score(7),
			Feasibility: score(6),
			WhyNow:      score(5),
		},
		BusinessFit: &models.BusinessFit{
			RevenuePotential:    &models.RevenuePotential{Range: "$1M - $10M ARR", Rationale: "large market"},
			ExecutionDifficulty: &models.ExecutionDifficulty{Score: 4, MVPTimeline: "3 months", Rationale: "simple"},
			GoToMarket:          &models.GoToMarket{Score: 7, Strategy: "content", Rationale: "seo"},
			FounderFit:          &models.FounderFitAssessment{IdealProfile: "ops", Rationale: "domain"},
		},
		FrameworkAnalysis: &models.FrameworkAnalysis{
			ValueEquation: &models.ValueEquation{Score: 7, Analysis: "good"},
		},
		DataInsights: &models.DataInsights{SearchTrends: "rising"},
		FinalRecommendation: &models.FinalRecommendation{
			Verdict: models.VerdictHighlyRecommended,
			Summary: "build it",
		},
	}
}

// analysisReply wraps a result the way models usually answer.
func analysisReply(result any) string {
	data, err := json.Marshal(result)
	if err != nil {
		panic(err)
	}
	return "<think>scoring</think>Here is the analysis:\n```json\n" + string(data) + "\n```"
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func strPtr(s string) *string {
	return &s
}
