package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/repository"
	"chronary-tracker/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer 内存repo + 静态token，完整路由
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop()
	mem := repository.NewMemoryRepository()

	guard := service.NewGuard(mem, mem)
	taxonomy := service.NewTaxonomyService(mem, mem, mem, guard, log)
	activities := service.NewActivityService(mem, guard, log)
	stats := service.NewStatsService(mem, mem, mem, mem, log)

	auth := NewAuthMiddleware(service.NewStaticAuthenticator("token-a=user-a,token-b=user-b"), log)
	router := NewRouter(log)
	router.RegisterServiceRoutes()
	router.RegisterTrackerRoutes(auth,
		NewTagTypesHandler(taxonomy, log),
		NewTagsHandler(taxonomy, log),
		NewSubtagsHandler(taxonomy, log),
		NewActivitiesHandler(activities, stats, taxonomy, log),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeResult[T any](t *testing.T, resp *http.Response) Result[T] {
	t.Helper()
	defer resp.Body.Close()
	var out Result[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRouter_ServiceRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 服务信息不需要token
	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	srv := newTestServer(t)

	// 无token
	resp := doRequest(t, http.MethodGet, srv.URL+"/tracker/api/v1/activities", "", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// token无效
	resp = doRequest(t, http.MethodGet, srv.URL+"/tracker/api/v1/activities", "nope", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestActivitiesAPI_CreateCloseFlow(t *testing.T) {
	srv := newTestServer(t)

	// 先建taxonomy
	resp := doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/tags", "token-a",
		map[string]any{"name": "Coding", "color": "#00ff00"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tag := decodeResult[domain.Tag](t, resp)
	require.Equal(t, ResultSuccess, tag.Code)
	require.NotEmpty(t, tag.Result.TagID)

	resp = doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/subtags", "token-a",
		map[string]any{"tag_id": tag.Result.TagID, "name": "Backend"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subtag := decodeResult[domain.Subtag](t, resp)

	// 开activity
	resp = doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/activities", "token-a",
		map[string]any{"name": "api work", "tag_id": tag.Result.TagID, "subtag_id": subtag.Result.SubtagID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeResult[domain.Activity](t, resp)
	require.True(t, created.Result.IsOpen())

	// close一次成功，再close报400
	closeURL := fmt.Sprintf("%s/tracker/api/v1/activities/%s/close", srv.URL, created.Result.ActivityID)
	resp = doRequest(t, http.MethodPost, closeURL, "token-a", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decodeResult[domain.Activity](t, resp)
	require.NotNil(t, closed.Result.End)

	resp = doRequest(t, http.MethodPost, closeURL, "token-a", nil)
	failed := decodeResult[any](t, resp)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, ResultError, failed.Code)

	// 用户隔离：user-b看不到
	getURL := srv.URL + "/tracker/api/v1/activities/" + created.Result.ActivityID
	resp = doRequest(t, http.MethodGet, getURL, "token-b", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// delete 204，再delete 404
	resp = doRequest(t, http.MethodDelete, getURL, "token-a", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doRequest(t, http.MethodDelete, getURL, "token-a", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestActivitiesAPI_CreateValidation(t *testing.T) {
	srv := newTestServer(t)

	// 缺tag_id
	resp := doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/activities", "token-a",
		map[string]any{"name": "x"})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 引用不存在的tag -> guard拒绝
	resp = doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/activities", "token-a",
		map[string]any{"name": "x", "tag_id": "missing"})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestActivitiesAPI_StatsAndRange(t *testing.T) {
	srv := newTestServer(t)

	// 空范围返回200和空列表
	statsURL := srv.URL + "/tracker/api/v1/activities/stats?start=2026-03-02T00:00:00Z&end=2026-03-03T00:00:00Z"
	resp := doRequest(t, http.MethodGet, statsURL, "token-a", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeResult[service.ActivityStats](t, resp)
	require.NotNil(t, stats.Result.Daily.ByTags)
	require.Empty(t, stats.Result.Daily.ByTags)
	require.NotNil(t, stats.Result.Weekly.ByTags)

	// end == start -> 400
	badURL := srv.URL + "/tracker/api/v1/activities/stats?start=2026-03-02T00:00:00Z&end=2026-03-02T00:00:00Z"
	resp = doRequest(t, http.MethodGet, badURL, "token-a", nil)
	failed := decodeResult[any](t, resp)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "end time must be after start time", failed.Message)

	// 缺参数 -> 400
	resp = doRequest(t, http.MethodGet, srv.URL+"/tracker/api/v1/activities/range?start=2026-03-02T00:00:00Z", "token-a", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// range正常路径
	rangeURL := srv.URL + "/tracker/api/v1/activities/range?start=2026-03-02T00:00:00Z&end=2026-03-03T00:00:00Z"
	resp = doRequest(t, http.MethodGet, rangeURL, "token-a", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ranged := decodeResult[[]*domain.Activity](t, resp)
	require.NotNil(t, ranged.Result)
	require.Empty(t, ranged.Result)
}

func TestActivitiesAPI_UpdatePatchSemantics(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/tags", "token-a",
		map[string]any{"name": "Coding"})
	tag := decodeResult[domain.Tag](t, resp)
	resp = doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/subtags", "token-a",
		map[string]any{"tag_id": tag.Result.TagID, "name": "Backend"})
	subtag := decodeResult[domain.Subtag](t, resp)

	resp = doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/activities", "token-a",
		map[string]any{"name": "api work", "description": "desc", "tag_id": tag.Result.TagID, "subtag_id": subtag.Result.SubtagID})
	created := decodeResult[domain.Activity](t, resp)

	url := srv.URL + "/tracker/api/v1/activities/" + created.Result.ActivityID

	// 省略的字段不动
	resp = doRequest(t, http.MethodPut, url, "token-a", map[string]any{"name": "renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeResult[domain.Activity](t, resp)
	require.Equal(t, "renamed", updated.Result.Name)
	require.Equal(t, "desc", updated.Result.Description)
	require.NotNil(t, updated.Result.SubtagID)

	// JSON null显式清除subtag
	resp = doRequest(t, http.MethodPut, url, "token-a", map[string]any{"subtag_id": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated = decodeResult[domain.Activity](t, resp)
	require.Nil(t, updated.Result.SubtagID)
}

func TestTagTypesAPI_CRUD(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/tag_types", "token-a",
		map[string]any{"name": "Work"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeResult[domain.TagType](t, resp)
	require.Equal(t, "Work", created.Result.Name)

	resp = doRequest(t, http.MethodGet, srv.URL+"/tracker/api/v1/tag_types", "token-a", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeResult[[]*domain.TagType](t, resp)
	require.Len(t, list.Result, 1)

	// 别的用户列表为空
	resp = doRequest(t, http.MethodGet, srv.URL+"/tracker/api/v1/tag_types", "token-b", nil)
	otherList := decodeResult[[]*domain.TagType](t, resp)
	require.Empty(t, otherList.Result)

	url := srv.URL + "/tracker/api/v1/tag_types/" + created.Result.TagTypeID
	resp = doRequest(t, http.MethodPut, url, "token-a", map[string]any{"name": "Life"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeResult[domain.TagType](t, resp)
	require.Equal(t, "Life", updated.Result.Name)

	resp = doRequest(t, http.MethodDelete, url, "token-a", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doRequest(t, http.MethodGet, url, "token-a", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubtagsAPI_ListByTag(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/tags", "token-a",
		map[string]any{"name": "Coding"})
	tag := decodeResult[domain.Tag](t, resp)
	for _, name := range []string{"Backend", "Frontend"} {
		resp = doRequest(t, http.MethodPost, srv.URL+"/tracker/api/v1/subtags", "token-a",
			map[string]any{"tag_id": tag.Result.TagID, "name": name})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/tracker/api/v1/subtags/by_tag/"+tag.Result.TagID, "token-a", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeResult[[]*domain.Subtag](t, resp)
	require.Len(t, list.Result, 2)

	// 别人的tag下没有subtag可见
	resp = doRequest(t, http.MethodGet, srv.URL+"/tracker/api/v1/subtags/by_tag/"+tag.Result.TagID, "token-b", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	otherList := decodeResult[[]*domain.Subtag](t, resp)
	require.Empty(t, otherList.Result)
}
