package department

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/coopnet/intranet-api/internal/authz"
	"github.com/coopnet/intranet-api/internal/post"
	"github.com/coopnet/intranet-api/internal/transport"
)

// Handler serves the per-department sections on top of the shared post
// service. Routes carry the department slug; the handler translates it to
// the claim-prefix code before delegating.
type Handler struct {
	*transport.BaseHandler
	posts *post.Service
}

func NewHandler(posts *post.Service, lg *slog.Logger) *Handler {
	return &Handler{BaseHandler: transport.NewBaseHandler(lg), posts: posts}
}

// List handles GET /departments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": Registry})
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (Department, bool) {
	slug := chi.URLParam(r, "department")
	d, ok := BySlug(slug)
	if !ok {
		h.WriteError(w, http.StatusNotFound, "unknown department")
		return Department{}, false
	}
	return d, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, post.ErrPostNotFound):
		h.WriteError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, post.ErrForbidden):
		h.WriteError(w, http.StatusForbidden, "Forbidden: insufficient permissions")
	default:
		h.HandleServiceError(w, err)
	}
}

// Feed handles GET /departments/{department}/posts.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	if _, ok := authz.PrincipalFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	d, ok := h.resolve(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.posts.DepartmentFeed(r.Context(), d.Code, page, pageSize)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// CreatePost handles POST /departments/{department}/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	d, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var dto post.CreatePostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.posts.CreateDepartmentPost(r.Context(), p, d.Code, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}
