package httpapi

import (
	"net/http"
	"strings"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/service"

	"go.uber.org/zap"
)

// TagTypesHandler /tracker/api/v1/tag_types
type TagTypesHandler struct {
	taxonomy *service.TaxonomyService
	logger   *zap.Logger
}

func NewTagTypesHandler(taxonomy *service.TaxonomyService, logger *zap.Logger) *TagTypesHandler {
	return &TagTypesHandler{taxonomy: taxonomy, logger: logger}
}

type createTagTypeRequest struct {
	Name string `json:"name"`
}

// Collection POST创建 / GET列表
func (h *TagTypesHandler) Collection(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodPost:
		var req createTagTypeRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Name == "" {
			writeJSON(w, http.StatusBadRequest, Fail("name is required"))
			return
		}
		tt, err := h.taxonomy.CreateTagType(r.Context(), userID, req.Name)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(tt))
	case http.MethodGet:
		items, err := h.taxonomy.ListTagTypes(r.Context(), userID)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		if items == nil {
			items = []*domain.TagType{}
		}
		writeJSON(w, http.StatusOK, Ok(items))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ByID GET / PUT / DELETE
func (h *TagTypesHandler) ByID(w http.ResponseWriter, r *http.Request, userID string) {
	id := strings.TrimPrefix(r.URL.Path, "/tracker/api/v1/tag_types/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tt, err := h.taxonomy.GetTagType(r.Context(), userID, id)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(tt))
	case http.MethodPut:
		var patch domain.TagTypePatch
		if err := readBodyJSON(r, 1<<20, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		tt, err := h.taxonomy.UpdateTagType(r.Context(), userID, id, patch)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(tt))
	case http.MethodDelete:
		deleted, err := h.taxonomy.DeleteTagType(r.Context(), userID, id)
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
