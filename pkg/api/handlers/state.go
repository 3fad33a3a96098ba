package handlers

import (
	"context"
	"net/http"

	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/controller"
)

// StateService is the part of the session the state endpoints use.
type StateService interface {
	Snapshot() controller.Snapshot
	Reset(ctx context.Context) error
}

// StateHandler exposes the whole session state.
type StateHandler struct {
	service StateService
	logger  handlerLogger
}

// NewStateHandler creates a new state handler.
func NewStateHandler(service StateService, log handlerLogger) *StateHandler {
	if log == nil {
		log = nopLogger{}
	}
	return &StateHandler{service: service, logger: log}
}

// GetState handles GET /api/v1/state
// @Summary Session state
// @Description Memories, interactions, statistics, the latest search and the busy flags
// @Tags state
// @Produce json
// @Success 200 {object} controller.Snapshot
// @Router /api/v1/state [get]
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.Snapshot())
}

// ResetState handles DELETE /api/v1/state
// @Summary Reset the session
// @Description Empty both stored collections and clear the search state
// @Tags state
// @Success 204 "Session reset"
// @Failure 503 {object} response.ErrorResponse "Storage unavailable"
// @Router /api/v1/state [delete]
func (h *StateHandler) ResetState(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		writeError(w, r, h.logger, "Reset state", err)
		return
	}

	h.logger.Info("Session state reset", "request_id", getRequestID(r.Context()))
	response.NoContent(w)
}
