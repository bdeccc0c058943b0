package httpapi

import (
	"net/http"
	"strings"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/service"

	"go.uber.org/zap"
)

// SubtagsHandler /tracker/api/v1/subtags
type SubtagsHandler struct {
	taxonomy *service.TaxonomyService
	logger   *zap.Logger
}

func NewSubtagsHandler(taxonomy *service.TaxonomyService, logger *zap.Logger) *SubtagsHandler {
	return &SubtagsHandler{taxonomy: taxonomy, logger: logger}
}

type createSubtagRequest struct {
	Name  string `json:"name"`
	TagID string `json:"tag_id"`
}

// Create POST /subtags
func (h *SubtagsHandler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req createSubtagRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Name == "" || req.TagID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("name and tag_id are required"))
		return
	}
	st, err := h.taxonomy.CreateSubtag(r.Context(), userID, req.TagID, req.Name)
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(st))
}

// ListByTag GET /subtags/by_tag/{tag_id}
func (h *SubtagsHandler) ListByTag(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tagID := strings.TrimPrefix(r.URL.Path, "/tracker/api/v1/subtags/by_tag/")
	if tagID == "" || strings.Contains(tagID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	items, err := h.taxonomy.ListSubtagsForTag(r.Context(), userID, tagID)
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*domain.Subtag{}
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// ByID GET / PUT / DELETE /subtags/{id}
func (h *SubtagsHandler) ByID(w http.ResponseWriter, r *http.Request, userID string) {
	id := strings.TrimPrefix(r.URL.Path, "/tracker/api/v1/subtags/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		st, err := h.taxonomy.GetSubtag(r.Context(), userID, id)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(st))
	case http.MethodPut:
		var patch domain.SubtagPatch
		if err := readBodyJSON(r, 1<<20, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		st, err := h.taxonomy.UpdateSubtag(r.Context(), userID, id, patch)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(st))
	case http.MethodDelete:
		deleted, err := h.taxonomy.DeleteSubtag(r.Context(), userID, id)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		if !deleted {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
