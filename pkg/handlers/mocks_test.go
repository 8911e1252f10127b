package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/services"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type mockIdeaService struct {
	page      *models.IdeaPage
	idea      *models.Idea
	detail    *models.IdeaDetail
	err       error
	listPage  int
	listLimit int
	created   *services.CreateIdeaInput
	updated   *models.IdeaUpdate
	deleted   uuid.UUID
	signal    *models.IdeaCommunitySignal
}

func (m *mockIdeaService) List(ctx context.Context, page, limit int) (*models.IdeaPage, error) {
	m.listPage, m.listLimit = page, limit
	return m.page, m.err
}

func (m *mockIdeaService) Create(ctx context.Context, input *services.CreateIdeaInput) (*models.Idea, error) {
	m.created = input
	if m.err != nil {
		return nil, m.err
	}
	return m.idea, nil
}

func (m *mockIdeaService) Get(ctx context.Context, id uuid.UUID) (*models.IdeaDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *mockIdeaService) Update(ctx context.Context, id uuid.UUID, update *models.IdeaUpdate) (*models.Idea, error) {
	m.updated = update
	if m.err != nil {
		return nil, m.err
	}
	return m.idea, nil
}

func (m *mockIdeaService) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleted = id
	return m.err
}

func (m *mockIdeaService) AddCommunitySignal(ctx context.Context, ideaID uuid.UUID, signal *models.IdeaCommunitySignal) error {
	if m.err != nil {
		return m.err
	}
	signal.ID = uuid.New()
	signal.IdeaID = ideaID
	m.signal = signal
	return nil
}

type mockAnalysisService struct {
	outcome  *services.AnalysisOutcome
	latest   *models.Analysis
	keywords []*models.Keyword
	err      error
}

func (m *mockAnalysisService) Analyze(ctx context.Context, ideaID uuid.UUID) (*services.AnalysisOutcome, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.outcome, nil
}

func (m *mockAnalysisService) GetLatest(ctx context.Context, ideaID uuid.UUID) (*models.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.latest, nil
}

func (m *mockAnalysisService) BatchAnalyze(ctx context.Context, limit int, delay time.Duration) (*services.BatchReport, error) {
	return &services.BatchReport{}, nil
}

func (m *mockAnalysisService) ExtractKeywords(ctx context.Context, ideaID uuid.UUID) ([]*models.Keyword, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.keywords, nil
}

type mockSignalService struct {
	listing       *services.SignalListing
	investigation *services.Investigation
	ideas         *services.IdeasWithSignals
	err           error

	keywords      []string
	platform      string
	generateIdeas bool
}

func (m *mockSignalService) Collect(ctx context.Context, keywords []string, platform string) *services.SignalListing {
	m.keywords, m.platform = keywords, platform
	return m.listing
}

func (m *mockSignalService) Investigate(ctx context.Context, keywords []string, generateIdeas bool) *services.Investigation {
	m.keywords, m.generateIdeas = keywords, generateIdeas
	return m.investigation
}

func (m *mockSignalService) IdeasWithSignals(ctx context.Context) (*services.IdeasWithSignals, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ideas, nil
}

type mockFounderFitService struct {
	result  *services.FounderFitResult
	answers map[string][]string
}

func (m *mockFounderFitService) Generate(ctx context.Context, answers map[string][]string) *services.FounderFitResult {
	m.answers = answers
	return m.result
}

type mockResearchService struct {
	result *services.ResearchResult
	idea   string
}

func (m *mockResearchService) Research(ctx context.Context, idea string) *services.ResearchResult {
	m.idea = idea
	return m.result
}

var (
	_ services.IdeaService       = (*mockIdeaService)(nil)
	_ services.AnalysisService   = (*mockAnalysisService)(nil)
	_ services.SignalService     = (*mockSignalService)(nil)
	_ services.FounderFitService = (*mockFounderFitService)(nil)
	_ services.ResearchService   = (*mockResearchService)(nil)
)

// ============================================================================
// Helpers
// ============================================================================

// noScope stands in for the database scope middleware.
func noScope(next http.HandlerFunc) http.HandlerFunc {
	return next
}

// testResponse mirrors ApiResponse with a raw data payload.
type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details string          `json:"details"`
	Cached  *bool           `json:"cached"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}
