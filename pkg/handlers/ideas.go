package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// CreateIdeaRequest for POST /api/ideas
type CreateIdeaRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Problem      *string `json:"problem,omitempty"`
	Solution     *string `json:"solution,omitempty"`
	TargetMarket *string `json:"targetMarket,omitempty"`
	RevenueModel *string `json:"revenueModel,omitempty"`
	UserID       *string `json:"userId,omitempty"`
}

// AddCommunitySignalRequest for POST /api/ideas/{id}/community-signals
type AddCommunitySignalRequest struct {
	Platform        string   `json:"platform"`
	CommunityName   string   `json:"communityName"`
	MemberCount     *int     `json:"memberCount,omitempty"`
	EngagementScore *float64 `json:"engagementScore,omitempty"`
	SignalStrength  *int     `json:"signalStrength,omitempty"`
	SourceURL       *string  `json:"sourceUrl,omitempty"`
}

// ============================================================================
// Handler
// ============================================================================

// IdeasHandler handles idea CRUD and per-idea enrichment requests.
type IdeasHandler struct {
	ideaService     services.IdeaService
	analysisService services.AnalysisService
	logger          *zap.Logger
}

// NewIdeasHandler creates a new ideas handler.
func NewIdeasHandler(
	ideaService services.IdeaService,
	analysisService services.AnalysisService,
	logger *zap.Logger,
) *IdeasHandler {
	return &IdeasHandler{
		ideaService:     ideaService,
		analysisService: analysisService,
		logger:          logger,
	}
}

// RegisterRoutes registers the ideas handler's routes on the given mux.
// scope supplies the database connection for each request.
func (h *IdeasHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	base := "/api/ideas"

	mux.HandleFunc("GET "+base, scope(h.List))
	mux.HandleFunc("POST "+base, scope(h.Create))
	mux.HandleFunc("GET "+base+"/{id}", scope(h.Get))
	mux.HandleFunc("PUT "+base+"/{id}", scope(h.Update))
	mux.HandleFunc("DELETE "+base+"/{id}", scope(h.Delete))
	mux.HandleFunc("POST "+base+"/{id}/keywords", scope(h.ExtractKeywords))
	mux.HandleFunc("POST "+base+"/{id}/community-signals", scope(h.AddCommunitySignal))
}

// List handles GET /api/ideas
func (h *IdeasHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.ideaService.List(r.Context(), QueryInt(r, "page"), QueryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{code: "list_ideas_failed", message: "Failed to fetch ideas"})
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: page}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/ideas
func (h *IdeasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	input := &services.CreateIdeaInput{
		Title:        req.Title,
		Description:  req.Description,
		Problem:      req.Problem,
		Solution:     req.Solution,
		TargetMarket: req.TargetMarket,
		RevenueModel: req.RevenueModel,
	}
	if req.UserID != nil && *req.UserID != "" {
		userID, err := uuid.Parse(*req.UserID)
		if err != nil {
			writeBadRequest(w, h.logger, "invalid_input", "User not found")
			return
		}
		input.UserID = &userID
	}

	idea, err := h.ideaService.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{code: "create_idea_failed", message: "Failed to create idea"})
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: idea}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/ideas/{id}
func (h *IdeasHandler) Get(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := ParseIdeaID(w, r, h.logger)
	if !ok {
		return
	}

	detail, err := h.ideaService.Get(r.Context(), ideaID)
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "get_idea_failed", message: "Failed to fetch idea", notFound: "Idea not found",
		}, zap.String("idea_id", ideaID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: detail}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/ideas/{id}
func (h *IdeasHandler) Update(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := ParseIdeaID(w, r, h.logger)
	if !ok {
		return
	}

	var update models.IdeaUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	idea, err := h.ideaService.Update(r.Context(), ideaID, &update)
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "update_idea_failed", message: "Failed to update idea", notFound: "Idea not found",
		}, zap.String("idea_id", ideaID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: idea}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/ideas/{id}
func (h *IdeasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := ParseIdeaID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.ideaService.Delete(r.Context(), ideaID); err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "delete_idea_failed", message: "Failed to delete idea", notFound: "Idea not found",
		}, zap.String("idea_id", ideaID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Idea deleted successfully"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ExtractKeywords handles POST /api/ideas/{id}/keywords
func (h *IdeasHandler) ExtractKeywords(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := ParseIdeaID(w, r, h.logger)
	if !ok {
		return
	}

	keywords, err := h.analysisService.ExtractKeywords(r.Context(), ideaID)
	if err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "extract_keywords_failed", message: "Failed to extract keywords", notFound: "Idea not found", withDetails: true,
		}, zap.String("idea_id", ideaID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: keywords}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// AddCommunitySignal handles POST /api/ideas/{id}/community-signals
func (h *IdeasHandler) AddCommunitySignal(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := ParseIdeaID(w, r, h.logger)
	if !ok {
		return
	}

	var req AddCommunitySignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	signal := &models.IdeaCommunitySignal{
		Platform:        req.Platform,
		CommunityName:   req.CommunityName,
		MemberCount:     req.MemberCount,
		EngagementScore: req.EngagementScore,
		SignalStrength:  req.SignalStrength,
		SourceURL:       req.SourceURL,
	}
	if err := h.ideaService.AddCommunitySignal(r.Context(), ideaID, signal); err != nil {
		writeServiceError(w, h.logger, err, serviceFailure{
			code: "add_community_signal_failed", message: "Failed to add community signal", notFound: "Idea not found",
		}, zap.String("idea_id", ideaID.String()))
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: signal}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
