package guide

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/coopnet/intranet-api/internal/transport"
)

// Handler exposes the orientador builder. Reads are open to any
// authenticated caller; writes sit behind the CanManageGuides policy.
type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(service *Service, lg *slog.Logger) *Handler {
	return &Handler{BaseHandler: transport.NewBaseHandler(lg), service: service}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrButtonNotFound):
		h.WriteError(w, http.StatusNotFound, "guide button not found")
	case errors.Is(err, ErrTableNotFound):
		h.WriteError(w, http.StatusNotFound, "guide table not found")
	default:
		h.HandleServiceError(w, err)
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid button id")
		return 0, false
	}
	return id, true
}

// ListButtons handles GET /guides/buttons.
func (h *Handler) ListButtons(w http.ResponseWriter, r *http.Request) {
	buttons, err := h.service.ListButtons(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"buttons": buttons})
}

// CreateButton handles POST /guides/buttons.
func (h *Handler) CreateButton(w http.ResponseWriter, r *http.Request) {
	var dto ButtonDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.CreateButton(r.Context(), dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, b)
}

// UpdateButton handles PUT /guides/buttons/{id}.
func (h *Handler) UpdateButton(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto ButtonDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.UpdateButton(r.Context(), id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

// DeleteButton handles DELETE /guides/buttons/{id}.
func (h *Handler) DeleteButton(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteButton(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles PUT /guides/buttons/order.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var dto ReorderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Reorder(r.Context(), dto); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTable handles GET /guides/buttons/{id}/table.
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	t, err := h.service.Table(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// SaveTable handles PUT /guides/buttons/{id}/table.
func (h *Handler) SaveTable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto TableDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.service.SaveTable(r.Context(), id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}
