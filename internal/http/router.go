package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterServiceRoutes 服务信息 + 健康检查
func (r *Router) RegisterServiceRoutes() {
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "chronary-tracker",
			"version": "1.0.0",
			"status":  "running",
		})
	})
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}

// RegisterTrackerRoutes 注册tracker API路由（全部经过auth中间件）
// ServeMux精确pattern优先于子树pattern，/activities/stats等不会落进ByID
func (r *Router) RegisterTrackerRoutes(
	auth *AuthMiddleware,
	tagTypes *TagTypesHandler,
	tags *TagsHandler,
	subtags *SubtagsHandler,
	activities *ActivitiesHandler,
) {
	// tag types
	r.Handle("/tracker/api/v1/tag_types", auth.Wrap(tagTypes.Collection))
	r.Handle("/tracker/api/v1/tag_types/", auth.Wrap(tagTypes.ByID))

	// tags
	r.Handle("/tracker/api/v1/tags", auth.Wrap(tags.Collection))
	r.Handle("/tracker/api/v1/tags/", auth.Wrap(tags.ByID))

	// subtags
	r.Handle("/tracker/api/v1/subtags", auth.Wrap(subtags.Create))
	r.Handle("/tracker/api/v1/subtags/", auth.Wrap(subtags.ByID))
	r.Handle("/tracker/api/v1/subtags/by_tag/", auth.Wrap(subtags.ListByTag))

	// activities
	r.Handle("/tracker/api/v1/activities", auth.Wrap(activities.Collection))
	r.Handle("/tracker/api/v1/activities/", auth.Wrap(activities.ByID))
	r.Handle("/tracker/api/v1/activities/after/", auth.Wrap(activities.After))
	r.Handle("/tracker/api/v1/activities/range", auth.Wrap(activities.Range))
	r.Handle("/tracker/api/v1/activities/stats", auth.Wrap(activities.Stats))
	r.Handle("/tracker/api/v1/activities/export", auth.Wrap(activities.Export))
}
