package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/services"
)

func newDiscoveryMux(fit *mockFounderFitService, research *mockResearchService) *http.ServeMux {
	mux := http.NewServeMux()
	NewDiscoveryHandler(fit, research, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestDiscoveryHandler_FounderFit(t *testing.T) {
	fit := &mockFounderFitService{result: &services.FounderFitResult{
		SessionID: "session_1700000000000_abc123def",
		Ideas:     []models.PersonalizedIdea{{Title: "Clinic scheduler", FounderFit: "You ran a clinic"}},
	}}
	mux := newDiscoveryMux(fit, &mockResearchService{})

	body := `{"answers":{"1":["Healthcare"],"2":["Scheduling","Billing"]}}`
	rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/founder-fit", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Scheduling", "Billing"}, fit.answers["2"])

	var result services.FounderFitResult
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &result))
	assert.Equal(t, "session_1700000000000_abc123def", result.SessionID)
	assert.False(t, result.Fallback)
	require.Len(t, result.Ideas, 1)
	assert.Equal(t, "Clinic scheduler", result.Ideas[0].Title)
}

func TestDiscoveryHandler_FounderFit_AnswersRequired(t *testing.T) {
	bodies := []string{`{}`, `{"answers":null}`, `not json`}

	for _, body := range bodies {
		fit := &mockFounderFitService{}
		mux := newDiscoveryMux(fit, &mockResearchService{})

		rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/founder-fit", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Answers are required", decodeResponse(t, rec).Error, body)
		assert.Nil(t, fit.answers, body)
	}
}

func TestDiscoveryHandler_Research(t *testing.T) {
	research := &mockResearchService{result: &services.ResearchResult{
		Report:   &models.ResearchReport{Title: "Pet insurance comparison", OpportunityScore: 7},
		Fallback: true,
	}}
	mux := newDiscoveryMux(&mockFounderFitService{}, research)

	body := `{"idea":"Compare pet insurance plans"}`
	rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/research-idea", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Compare pet insurance plans", research.idea)

	var data map[string]any
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &data))
	assert.Equal(t, "Pet insurance comparison", data["title"])
	assert.EqualValues(t, 7, data["opportunityScore"])
	assert.Equal(t, true, data["fallback"])
}

func TestDiscoveryHandler_Research_IdeaMustBeString(t *testing.T) {
	bodies := []string{`{}`, `{"idea":""}`, `{"idea":42}`, `{"idea":["a"]}`, `{"idea":null}`}

	for _, body := range bodies {
		research := &mockResearchService{}
		mux := newDiscoveryMux(&mockFounderFitService{}, research)

		rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/research-idea", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Idea is required and must be a string", decodeResponse(t, rec).Error, body)
		assert.Empty(t, research.idea, body)
	}
}
