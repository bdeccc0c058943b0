package httpapi

import (
	"net/http"
	"strings"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/service"

	"go.uber.org/zap"
)

// TagsHandler /tracker/api/v1/tags
type TagsHandler struct {
	taxonomy *service.TaxonomyService
	logger   *zap.Logger
}

func NewTagsHandler(taxonomy *service.TaxonomyService, logger *zap.Logger) *TagsHandler {
	return &TagsHandler{taxonomy: taxonomy, logger: logger}
}

type createTagRequest struct {
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	TagTypeID *string `json:"tag_type_id"`
}

// Collection POST创建 / GET列表
func (h *TagsHandler) Collection(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodPost:
		var req createTagRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Name == "" {
			writeJSON(w, http.StatusBadRequest, Fail("name is required"))
			return
		}
		tag, err := h.taxonomy.CreateTag(r.Context(), userID, req.Name, req.Color, req.TagTypeID)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(tag))
	case http.MethodGet:
		items, err := h.taxonomy.ListTags(r.Context(), userID)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		if items == nil {
			items = []*domain.Tag{}
		}
		writeJSON(w, http.StatusOK, Ok(items))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ByID GET / PUT / DELETE
func (h *TagsHandler) ByID(w http.ResponseWriter, r *http.Request, userID string) {
	id := strings.TrimPrefix(r.URL.Path, "/tracker/api/v1/tags/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tag, err := h.taxonomy.GetTag(r.Context(), userID, id)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(tag))
	case http.MethodPut:
		var patch domain.TagPatch
		if err := readBodyJSON(r, 1<<20, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		tag, err := h.taxonomy.UpdateTag(r.Context(), userID, id, patch)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(tag))
	case http.MethodDelete:
		deleted, err := h.taxonomy.DeleteTag(r.Context(), userID, id)
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
