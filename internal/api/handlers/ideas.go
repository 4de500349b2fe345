package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/aegis-ideas/internal/brain"
	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/internal/ideas"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// Generator runs and tracks generation requests
type Generator interface {
	GenerateInvestmentIdeas(ctx context.Context, req *contracts.GenerationRequest) (*contracts.IdeaGenerationResult, error)
	CancelRequest(requestID string) bool
	GetActiveRequestStatus(requestID string) (*contracts.GenerationRequest, bool)
	ActiveRequests() []string
}

// ResultStore keeps finished results
type ResultStore interface {
	SaveResult(ctx context.Context, result *contracts.IdeaGenerationResult) error
	Result(ctx context.Context, requestID string) (*contracts.IdeaGenerationResult, bool, error)
	LatestProfileRun(ctx context.Context, profileID string) (*contracts.IdeaGenerationResult, bool, error)
}

// Limiter decides whether a user may start another generation
type Limiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// IdeasHandler handles idea generation API endpoints
// ⭐ SSOT: 아이디어 API 핸들러는 이 구조체에서만
type IdeasHandler struct {
	generator Generator
	results   ResultStore
	repo      contracts.IdeaRepository
	limiter   Limiter
	logger    *logger.Logger
}

// NewIdeasHandler creates a new ideas handler
func NewIdeasHandler(
	generator Generator,
	results ResultStore,
	repo contracts.IdeaRepository,
	limiter Limiter,
	log *logger.Logger,
) *IdeasHandler {
	return &IdeasHandler{
		generator: generator,
		results:   results,
		repo:      repo,
		limiter:   limiter,
		logger:    log,
	}
}

// generationFailure is the 502 body of a failed run
type generationFailure struct {
	Error           string                     `json:"error"`
	RequestID       string                     `json:"requestId"`
	Phase           contracts.Phase            `json:"phase,omitempty"`
	ProcessingSteps []contracts.ProcessingStep `json:"processingSteps"`
}

// Generate runs the pipeline synchronously
// POST /api/ideas/generate
func (h *IdeasHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req contracts.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if err := req.Parameters.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	allowed, err := h.limiter.Allow(r.Context(), req.UserID)
	if err != nil {
		// Redis trouble should not block generation
		h.logger.WithError(err).Warn("Rate limit check failed")
	} else if !allowed {
		respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}

	// The run outlives a dropped client so its result stays retrievable
	ctx := context.WithoutCancel(r.Context())

	result, err := h.generator.GenerateInvestmentIdeas(ctx, &req)
	if errors.Is(err, brain.ErrRequestInFlight) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	if result != nil {
		if saveErr := h.results.SaveResult(ctx, result); saveErr != nil {
			h.logger.WithError(saveErr).WithField("request_id", result.RequestID).Warn("Failed to store result")
		}
	}

	var genErr *brain.GenerationError
	switch {
	case errors.As(err, &genErr):
		body := generationFailure{
			Error:           err.Error(),
			RequestID:       genErr.RequestID,
			Phase:           genErr.Phase,
			ProcessingSteps: make([]contracts.ProcessingStep, 0),
		}
		if result != nil {
			body.ProcessingSteps = result.Metadata.ProcessingSteps
		}
		respondJSON(w, http.StatusBadGateway, body)
	case err != nil:
		h.logger.WithError(err).Error("Idea generation failed")
		respondError(w, http.StatusInternalServerError, "Idea generation failed")
	default:
		respondJSON(w, http.StatusOK, result)
	}
}

// ListRequests returns the in-flight request IDs
// GET /api/ideas/requests
func (h *IdeasHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requests": h.generator.ActiveRequests(),
	})
}

// GetRequest returns an in-flight request
// GET /api/ideas/requests/{requestId}
func (h *IdeasHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]

	req, ok := h.generator.GetActiveRequestStatus(requestID)
	if !ok {
		respondError(w, http.StatusNotFound, "Request not in flight")
		return
	}

	respondJSON(w, http.StatusOK, req)
}

// CancelRequest removes a request from the registry
// DELETE /api/ideas/requests/{requestId}
func (h *IdeasHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requestId": requestID,
		"cancelled": h.generator.CancelRequest(requestID),
	})
}

// GetResult returns a stored result
// GET /api/ideas/results/{requestId}
func (h *IdeasHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]

	result, found, err := h.results.Result(r.Context(), requestID)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Error("Failed to get result")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve result")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Result not found")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetProfileRun returns the latest scheduled run of a profile
// GET /api/profiles/{profileId}/latest
func (h *IdeasHandler) GetProfileRun(w http.ResponseWriter, r *http.Request) {
	profileID := mux.Vars(r)["profileId"]

	result, found, err := h.results.LatestProfileRun(r.Context(), profileID)
	if err != nil {
		h.logger.WithError(err).WithField("profile_id", profileID).Error("Failed to get profile run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve profile run")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "No run for profile")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetIdea returns a persisted draft idea
// GET /api/ideas/{ideaId}
func (h *IdeasHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := mux.Vars(r)["ideaId"]

	idea, err := h.repo.GetInvestmentIdea(r.Context(), ideaID)
	if errors.Is(err, ideas.ErrIdeaNotFound) {
		respondError(w, http.StatusNotFound, "Idea not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("idea_id", ideaID).Error("Failed to get idea")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve idea")
		return
	}

	respondJSON(w, http.StatusOK, idea)
}
