package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/services"
)

// InvestigateRequest for POST /api/community-signals
type InvestigateRequest struct {
	Keywords      json.RawMessage `json:"keywords"`
	GenerateIdeas bool            `json:"generateIdeas"`
}

// CommunitySignalsHandler handles live community signal collection.
type CommunitySignalsHandler struct {
	signalService services.SignalService
	logger        *zap.Logger
}

// NewCommunitySignalsHandler creates a new community signals handler.
func NewCommunitySignalsHandler(signalService services.SignalService, logger *zap.Logger) *CommunitySignalsHandler {
	return &CommunitySignalsHandler{
		signalService: signalService,
		logger:        logger,
	}
}

// RegisterRoutes registers the community signal routes on the given mux.
// Only the idea matching route touches the database.
func (h *CommunitySignalsHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/community-signals", h.List)
	mux.HandleFunc("POST /api/community-signals", h.Investigate)
	mux.HandleFunc("GET /api/ideas-with-signals", scope(h.IdeasWithSignals))
}

// List handles GET /api/community-signals?keywords=a,b&platform=reddit
func (h *CommunitySignalsHandler) List(w http.ResponseWriter, r *http.Request) {
	listing := h.signalService.Collect(r.Context(), QueryList(r, "keywords"), r.URL.Query().Get("platform"))

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: listing}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Investigate handles POST /api/community-signals
func (h *CommunitySignalsHandler) Investigate(w http.ResponseWriter, r *http.Request) {
	var req InvestigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	var keywords []string
	if len(req.Keywords) == 0 || req.Keywords[0] != '[' || json.Unmarshal(req.Keywords, &keywords) != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Keywords array is required")
		return
	}

	investigation := h.signalService.Investigate(r.Context(), keywords, req.GenerateIdeas)

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: investigation}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// IdeasWithSignals handles GET /api/ideas-with-signals
func (h *CommunitySignalsHandler) IdeasWithSignals(w http.ResponseWriter, r *http.Request) {
	result, err := h.signalService.IdeasWithSignals(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "ideas_with_signals_failed", message: "Failed to fetch ideas with signals",
		})
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
