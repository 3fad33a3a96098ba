package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/controller"
	"github.com/coremem/coremem/pkg/memory"
)

// SearchService is the part of the session the search endpoints use.
type SearchService interface {
	Search(ctx context.Context, query string) (controller.SearchOutcome, error)
	Results() controller.SearchOutcome
	Interactions() []memory.Interaction
}

// SearchHandler handles search and interaction log endpoints.
type SearchHandler struct {
	service      SearchService
	logger       handlerLogger
	validator    *validator.Validate
	maxBodyBytes int64
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service SearchService, log handlerLogger, maxBodyBytes int64) *SearchHandler {
	if log == nil {
		log = nopLogger{}
	}
	return &SearchHandler{
		service:      service,
		logger:       log,
		validator:    newValidator(),
		maxBodyBytes: maxBodyBytes,
	}
}

type searchRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

type interactionListResponse struct {
	Interactions []memory.Interaction `json:"interactions"`
	Count        int                  `json:"count"`
}

// Search handles POST /api/v1/search
// @Summary Search memories
// @Description Rank the stored memories against the query and synthesize an answer from the relevant ones
// @Tags search
// @Accept json
// @Produce json
// @Param query body searchRequest true "Search query"
// @Success 200 {object} controller.SearchOutcome
// @Failure 400 {object} response.ErrorResponse "Invalid body or blank query"
// @Failure 409 {object} response.ErrorResponse "A search is already in progress"
// @Failure 502 {object} response.ErrorResponse "Language model failure"
// @Failure 504 {object} response.ErrorResponse "Request timeout"
// @Router /api/v1/search [post]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, h.validator, h.maxBodyBytes, &req) {
		return
	}

	outcome, err := h.service.Search(r.Context(), req.Query)
	if err != nil {
		writeError(w, r, h.logger, "Search", err)
		return
	}

	h.logger.Debug("Search completed", "results", len(outcome.Results), "request_id", getRequestID(r.Context()))
	response.JSON(w, http.StatusOK, outcome)
}

// LastResults handles GET /api/v1/search
// @Summary Latest search outcome
// @Tags search
// @Produce json
// @Success 200 {object} controller.SearchOutcome
// @Router /api/v1/search [get]
func (h *SearchHandler) LastResults(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.Results())
}

// ListInteractions handles GET /api/v1/interactions
// @Summary Interaction log
// @Description Past queries and their answers, newest first
// @Tags search
// @Produce json
// @Success 200 {object} interactionListResponse
// @Router /api/v1/interactions [get]
func (h *SearchHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	interactions := h.service.Interactions()
	response.JSON(w, http.StatusOK, interactionListResponse{Interactions: interactions, Count: len(interactions)})
}
