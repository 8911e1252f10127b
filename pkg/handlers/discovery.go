package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/services"
)

// FounderFitRequest for POST /api/founder-fit
type FounderFitRequest struct {
	Answers map[string][]string `json:"answers"`
}

// ResearchRequest for POST /api/research-idea
type ResearchRequest struct {
	Idea json.RawMessage `json:"idea"`
}

// ResearchResponse is the research report plus whether it is the static fallback.
type ResearchResponse struct {
	*models.ResearchReport
	Fallback bool `json:"fallback"`
}

// DiscoveryHandler handles the stateless LLM discovery tools:
// founder-fit questionnaires and free-text idea research.
type DiscoveryHandler struct {
	founderFitService services.FounderFitService
	researchService   services.ResearchService
	logger            *zap.Logger
}

// NewDiscoveryHandler creates a new discovery handler.
func NewDiscoveryHandler(
	founderFitService services.FounderFitService,
	researchService services.ResearchService,
	logger *zap.Logger,
) *DiscoveryHandler {
	return &DiscoveryHandler{
		founderFitService: founderFitService,
		researchService:   researchService,
		logger:            logger,
	}
}

// RegisterRoutes registers the discovery routes on the given mux.
func (h *DiscoveryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/founder-fit", h.FounderFit)
	mux.HandleFunc("POST /api/research-idea", h.Research)
}

// FounderFit handles POST /api/founder-fit
func (h *DiscoveryHandler) FounderFit(w http.ResponseWriter, r *http.Request) {
	var req FounderFitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Answers are required")
		return
	}
	if req.Answers == nil {
		writeBadRequest(w, h.logger, "invalid_request", "Answers are required")
		return
	}

	result := h.founderFitService.Generate(r.Context(), req.Answers)

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Research handles POST /api/research-idea
func (h *DiscoveryHandler) Research(w http.ResponseWriter, r *http.Request) {
	var req ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Idea is required and must be a string")
		return
	}

	var idea string
	if len(req.Idea) == 0 || json.Unmarshal(req.Idea, &idea) != nil || idea == "" {
		writeBadRequest(w, h.logger, "invalid_request", "Idea is required and must be a string")
		return
	}

	result := h.researchService.Research(r.Context(), idea)

	response := ApiResponse{
		Success: true,
		Data:    ResearchResponse{ResearchReport: result.Report, Fallback: result.Fallback},
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
