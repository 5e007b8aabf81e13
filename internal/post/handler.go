package post

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/coopnet/intranet-api/internal/authz"
	"github.com/coopnet/intranet-api/internal/transport"
)

// Handler exposes the feed, department sections, reactions, comments, and
// media upload over HTTP.
type Handler struct {
	*transport.BaseHandler
	service   *Service
	uploadDir string
	maxUpload int64
}

func NewHandler(service *Service, uploadDir string, maxUploadMB int64, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		service:     service,
		uploadDir:   uploadDir,
		maxUpload:   maxUploadMB << 20,
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*authz.Principal, bool) {
	p, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return p, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		h.WriteError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, ErrCommentNotFound):
		h.WriteError(w, http.StatusNotFound, "comment not found")
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNoFeedAccess):
		h.WriteError(w, http.StatusForbidden, "Forbidden: insufficient permissions")
	default:
		h.HandleServiceError(w, err)
	}
}

func paging(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	return page, pageSize
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// CreatePost handles POST /posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreatePostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateFeedPost(r.Context(), p, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// Feed handles GET /posts.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	page, pageSize := paging(r)
	result, err := h.service.Feed(r.Context(), p, page, pageSize)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// GetPost handles GET /posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	found, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

// UpdatePost handles PUT /posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var dto UpdatePostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdatePost(r.Context(), p, id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeletePost handles DELETE /posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.service.DeletePost(r.Context(), p, id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleReaction handles POST /posts/{id}/reactions.
func (h *Handler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var dto ReactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	reactions, err := h.service.ToggleReaction(r.Context(), p, id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"reactions": reactions})
}

// ListComments handles GET /posts/{id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	comments, err := h.service.ListComments(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// AddComment handles POST /posts/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var dto CommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.service.AddComment(r.Context(), p, id, dto)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, comment)
}

// DeleteComment handles DELETE /comments/{id}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.service.DeleteComment(r.Context(), p, id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadMedia handles POST /media. The stored filename is a fresh UUID with
// the original extension; the response carries the URL path to embed in a
// post.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.WriteError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".mp4", ".pdf":
	default:
		h.WriteError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	name := uuid.New().String() + ext
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.Logger.Error("failed to create upload dir", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		h.Logger.Error("failed to store upload", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.Logger.Error("failed to write upload", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{
		"url": fmt.Sprintf("/media/%s", name),
	})
}
