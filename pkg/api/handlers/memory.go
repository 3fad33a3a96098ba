package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/memory"
)

// DefaultListLimit is the number of memories listed when no limit is given.
const DefaultListLimit = 10

// MemoryService is the part of the session the memory endpoints use.
type MemoryService interface {
	Store(ctx context.Context, text string) (memory.Memory, error)
	Memories(limit int) []memory.Memory
	Delete(ctx context.Context, id string) error
	Stats() memory.MemoryStats
}

// MemoryHandler handles memory-related API endpoints.
type MemoryHandler struct {
	service      MemoryService
	logger       handlerLogger
	validator    *validator.Validate
	maxBodyBytes int64
}

// NewMemoryHandler creates a new memory handler.
func NewMemoryHandler(service MemoryService, log handlerLogger, maxBodyBytes int64) *MemoryHandler {
	if log == nil {
		log = nopLogger{}
	}
	return &MemoryHandler{
		service:      service,
		logger:       log,
		validator:    newValidator(),
		maxBodyBytes: maxBodyBytes,
	}
}

type storeRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type memoryListResponse struct {
	Memories []memory.Memory `json:"memories"`
	Count    int             `json:"count"`
}

// StoreMemory handles POST /api/v1/memories
// @Summary Store a memory
// @Description Enrich the text with the language model and store it as the newest memory
// @Tags memories
// @Accept json
// @Produce json
// @Param memory body storeRequest true "Memory text"
// @Success 201 {object} memory.Memory "Memory stored"
// @Failure 400 {object} response.ErrorResponse "Invalid body or blank text"
// @Failure 409 {object} response.ErrorResponse "A store is already in progress"
// @Failure 502 {object} response.ErrorResponse "Language model failure"
// @Failure 503 {object} response.ErrorResponse "Storage unavailable"
// @Router /api/v1/memories [post]
func (h *MemoryHandler) StoreMemory(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if !decodeBody(w, r, h.validator, h.maxBodyBytes, &req) {
		return
	}

	m, err := h.service.Store(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, h.logger, "Store memory", err)
		return
	}

	h.logger.Info("Memory stored", "id", m.ID, "request_id", getRequestID(r.Context()))
	response.JSON(w, http.StatusCreated, m)
}

// ListMemories handles GET /api/v1/memories?limit=N. A limit of 0 lists all memories.
// @Summary List memories
// @Description List stored memories, newest first
// @Tags memories
// @Produce json
// @Param limit query int false "Maximum number of memories, 0 for all" default(10)
// @Success 200 {object} memoryListResponse
// @Failure 400 {object} response.ErrorResponse "Invalid limit"
// @Router /api/v1/memories [get]
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
				"limit must be a non-negative integer", getRequestID(r.Context()))
			return
		}
		limit = v
	}

	memories := h.service.Memories(limit)
	response.JSON(w, http.StatusOK, memoryListResponse{Memories: memories, Count: len(memories)})
}

// DeleteMemory handles DELETE /api/v1/memories/{id}
// @Summary Delete a memory
// @Description Remove a memory from the collection and from the current search results
// @Tags memories
// @Param id path string true "Memory ID"
// @Success 204 "Memory deleted"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Failure 503 {object} response.ErrorResponse "Storage unavailable"
// @Router /api/v1/memories/{id} [delete]
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(r.Context()))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "Delete memory", err)
		return
	}

	response.NoContent(w)
}

// GetStats handles GET /api/v1/stats
// @Summary Memory statistics
// @Description Sentiment counts and the five most frequent entities
// @Tags memories
// @Produce json
// @Success 200 {object} memory.MemoryStats
// @Router /api/v1/stats [get]
func (h *MemoryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.Stats())
}
