package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/coopnet/intranet-api/internal/transport"
)

// Handler exposes the admin panel API: users, roles, claims, and manual
// claim sync. Every route is registered behind the CanManageUsers policy
// (CanManageAll passes through the policy check as the global override).
type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(service *Service, lg *slog.Logger) *Handler {
	return &Handler{BaseHandler: transport.NewBaseHandler(lg), service: service}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, h *Handler, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if !decode(w, r, h, &dto) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, user)
}

// UpdateUserRoles handles PUT /users/{id}/roles.
func (h *Handler) UpdateUserRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateUserRolesDTO
	if !decode(w, r, h, &dto) {
		return
	}

	result, err := h.service.UpdateUserRoles(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// GrantClaim handles POST /users/{id}/claims.
func (h *Handler) GrantClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto ClaimDTO
	if !decode(w, r, h, &dto) {
		return
	}

	if err := h.service.GrantClaim(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevokeClaim handles DELETE /users/{id}/claims/{claimType}.
func (h *Handler) RevokeClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	claimType := chi.URLParam(r, "claimType")
	if claimType == "" {
		h.WriteError(w, http.StatusBadRequest, "claim type is required")
		return
	}

	if err := h.service.RevokeClaim(r.Context(), id, claimType); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncUser handles POST /users/{id}/sync.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.SyncUser(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// ListRoles handles GET /roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})
}

// CreateRole handles POST /roles.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto RoleDTO
	if !decode(w, r, h, &dto) {
		return
	}

	role, err := h.service.CreateRole(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, role)
}

// UpdateRole handles PUT /roles/{id}.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto RoleDTO
	if !decode(w, r, h, &dto) {
		return
	}

	role, err := h.service.UpdateRole(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

// DeleteRole handles DELETE /roles/{id}.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAvailableClaims handles GET /claims.
func (h *Handler) ListAvailableClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.service.ListAvailableClaims(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"claims": claims})
}

// CreateAvailableClaim handles POST /claims.
func (h *Handler) CreateAvailableClaim(w http.ResponseWriter, r *http.Request) {
	var dto AvailableClaimDTO
	if !decode(w, r, h, &dto) {
		return
	}

	claim, err := h.service.CreateAvailableClaim(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, claim)
}

// DeleteAvailableClaim handles DELETE /claims/{id}.
func (h *Handler) DeleteAvailableClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteAvailableClaim(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
