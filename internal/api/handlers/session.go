package handlers

import (
	"errors"
	"net/http"

	"github.com/Harshitk-cp/recipebot/internal/api/middleware"
	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionHandler struct {
	svc    *service.DialogService
	logger *zap.Logger
}

func NewSessionHandler(svc *service.DialogService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger}
}

// turnRequest carries either interpreted intents or raw text, never both.
type turnRequest struct {
	Intents []domain.Intent `json:"intents"`
	Text    string          `json:"text"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.svc.StartSession(r.Context(), tenant.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.identify(w, r)
	if !ok {
		return
	}

	state, err := h.svc.BotState(r.Context(), tenant.ID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.svc.EndSession(r.Context(), tenant.ID, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Turn(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req turnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text != "" && len(req.Intents) > 0 {
		writeError(w, http.StatusBadRequest, "send either intents or text")
		return
	}

	var (
		result *service.TurnResult
		err    error
	)
	if req.Text != "" {
		result, err = h.svc.TurnText(r.Context(), tenant.ID, id, req.Text)
	} else {
		result, err = h.svc.Turn(r.Context(), tenant.ID, id, req.Intents)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) identify(w http.ResponseWriter, r *http.Request) (*domain.Tenant, uuid.UUID, bool) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, uuid.Nil, false
	}
	return tenant, id, true
}

func (h *SessionHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrTextEmpty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoUnderstander):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, domain.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, "recipe backend unavailable")
	default:
		h.logger.Error("session request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
