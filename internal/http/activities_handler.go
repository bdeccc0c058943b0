package httpapi

import (
	"net/http"
	"strings"
	"time"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/service"

	"go.uber.org/zap"
)

// ActivitiesHandler /tracker/api/v1/activities
type ActivitiesHandler struct {
	activities *service.ActivityService
	stats      *service.StatsService
	taxonomy   *service.TaxonomyService
	logger     *zap.Logger
}

func NewActivitiesHandler(
	activities *service.ActivityService,
	stats *service.StatsService,
	taxonomy *service.TaxonomyService,
	logger *zap.Logger,
) *ActivitiesHandler {
	return &ActivitiesHandler{
		activities: activities,
		stats:      stats,
		taxonomy:   taxonomy,
		logger:     logger,
	}
}

type createActivityRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TagID       string  `json:"tag_id"`
	SubtagID    *string `json:"subtag_id"`
}

// Collection POST创建 / GET列表
func (h *ActivitiesHandler) Collection(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodPost:
		var req createActivityRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Name == "" || req.TagID == "" {
			writeJSON(w, http.StatusBadRequest, Fail("name and tag_id are required"))
			return
		}
		a, err := h.activities.Create(r.Context(), userID, req.TagID, req.SubtagID, req.Name, req.Description)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(a))
	case http.MethodGet:
		items, err := h.activities.List(r.Context(), userID)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(emptyIfNil(items)))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// After GET /activities/after/{ts}
func (h *ActivitiesHandler) After(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/tracker/api/v1/activities/after/")
	after, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("timestamp must be RFC3339"))
		return
	}
	items, err := h.activities.ListAfter(r.Context(), userID, after)
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(emptyIfNil(items)))
}

// Range GET /activities/range?start=...&end=...
// end必须严格晚于start（在调用core之前校验）
func (h *ActivitiesHandler) Range(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start, end, ok := h.timeRange(w, r)
	if !ok {
		return
	}
	items, err := h.activities.ListInRange(r.Context(), userID, start, end)
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(emptyIfNil(items)))
}

// Stats GET /activities/stats?start=...&end=...
func (h *ActivitiesHandler) Stats(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start, end, ok := h.timeRange(w, r)
	if !ok {
		return
	}
	result, err := h.stats.ComputeStats(r.Context(), userID, start, end)
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// ByID GET / PUT / DELETE /activities/{id}，POST /activities/{id}/close
func (h *ActivitiesHandler) ByID(w http.ResponseWriter, r *http.Request, userID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/tracker/api/v1/activities/")

	if id, ok := strings.CutSuffix(rest, "/close"); ok {
		if r.Method != http.MethodPost || id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a, err := h.activities.Close(r.Context(), userID, id)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(a))
		return
	}

	id := rest
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, err := h.activities.Get(r.Context(), userID, id)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(a))
	case http.MethodPut:
		var patch domain.ActivityPatch
		if err := readBodyJSON(r, 1<<20, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		a, err := h.activities.Update(r.Context(), userID, id, patch)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(a))
	case http.MethodDelete:
		deleted, err := h.activities.Delete(r.Context(), userID, id)
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

func (h *ActivitiesHandler) timeRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := parseTimeParam(r, "start")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return time.Time{}, time.Time{}, false
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		writeJSON(w, http.StatusBadRequest, Fail("end time must be after start time"))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func emptyIfNil(items []*domain.Activity) []*domain.Activity {
	if items == nil {
		return []*domain.Activity{}
	}
	return items
}
