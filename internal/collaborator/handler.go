package collaborator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/coopnet/intranet-api/internal/transport"
)

// Handler exposes collaborator profiles, activity tags, and the org chart.
// Write routes are guarded by the policy middleware at registration time, so
// the handler only deals with request shape.
type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(service *Service, lg *slog.Logger) *Handler {
	return &Handler{BaseHandler: transport.NewBaseHandler(lg), service: service}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.WriteError(w, http.StatusNotFound, "collaborator not found")
	case errors.Is(err, ErrDuplicateEmail):
		h.WriteError(w, http.StatusConflict, "collaborator email already registered")
	case errors.Is(err, ErrBadSupervisor):
		h.WriteError(w, http.StatusBadRequest, "supervisor does not exist")
	default:
		h.HandleServiceError(w, err)
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid collaborator id")
		return 0, false
	}
	return id, true
}

// List handles GET /collaborators.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	collaborators, err := h.service.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"collaborators": collaborators})
}

// Get handles GET /collaborators/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Create handles POST /collaborators.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateCollaboratorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// Update handles PUT /collaborators/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateCollaboratorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /collaborators/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTags handles PUT /collaborators/{id}/tags.
func (h *Handler) SetTags(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto TagsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.SetTags(r.Context(), id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// OrgChart handles GET /orgchart.
func (h *Handler) OrgChart(w http.ResponseWriter, r *http.Request) {
	roots, err := h.service.OrgChart(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"orgchart": roots})
}
