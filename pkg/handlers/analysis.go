package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/services"
)

// AnalysisHandler handles LLM analysis requests for ideas.
type AnalysisHandler struct {
	analysisService services.AnalysisService
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(analysisService services.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// RegisterRoutes registers the analysis handler's routes on the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/analysis/{ideaId}", scope(h.Analyze))
	mux.HandleFunc("GET /api/analysis/{ideaId}", scope(h.Get))
}

// Analyze handles POST /api/analysis/{ideaId}
// Returns a recent analysis when one exists, otherwise runs a new one.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := ParseAnalysisIdeaID(w, r, h.logger)
	if !ok {
		return
	}

	outcome, err := h.analysisService.Analyze(r.Context(), ideaID)
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "analysis_failed", message: "Failed to analyze idea", notFound: "Idea not found", withDetails: true,
		}, zap.String("idea_id", ideaID.String()))
		return
	}

	cached := outcome.Cached
	response := ApiResponse{
		Success: true,
		Data:    outcome.Analysis.AnalysisData,
		Cached:  &cached,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/analysis/{ideaId}
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := ParseAnalysisIdeaID(w, r, h.logger)
	if !ok {
		return
	}

	analysis, err := h.analysisService.GetLatest(r.Context(), ideaID)
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "get_analysis_failed", message: "Failed to fetch analysis", notFound: "No analysis found for this idea",
		}, zap.String("idea_id", ideaID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: analysis.AnalysisData}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
