package router_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reuben-idan/alx-backend-storage/internal/cache"
	"github.com/reuben-idan/alx-backend-storage/internal/handler"
	"github.com/reuben-idan/alx-backend-storage/internal/kv"
	"github.com/reuben-idan/alx-backend-storage/internal/model"
	"github.com/reuben-idan/alx-backend-storage/internal/repository"
	"github.com/reuben-idan/alx-backend-storage/internal/router"
	"github.com/reuben-idan/alx-backend-storage/internal/webcache"
	"github.com/reuben-idan/alx-backend-storage/pkg/response"
	"github.com/reuben-idan/alx-backend-storage/pkg/uid"
)

// testAPI wires a full router against a memory store and a local
// upstream server.
type testAPI struct {
	mux          *chi.Mux
	store        kv.Store
	upstream     *httptest.Server
	upstreamHits *int32
}

func newTestAPI(t *testing.T, fetchLog repository.FetchLogRepository) *testAPI {
	t.Helper()

	store := kv.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, "hello from upstream")
	}))
	t.Cleanup(upstream.Close)

	client := cache.NewClient(store)

	wcOpts := []webcache.Option{}
	if fetchLog != nil {
		wcOpts = append(wcOpts, webcache.WithFetchLog(fetchLog))
	}
	wc := webcache.New(store, webcache.NewHTTPFetcher(5*time.Second), wcOpts...)

	mux := router.New(router.Config{
		Handler:      handler.New(store, "alx-cache-api", "test"),
		CacheHandler: handler.NewCacheHandler(client),
		PageHandler:  handler.NewPageHandler(wc),
		AdminHandler: handler.NewAdminHandler(wc, fetchLog, "memory"),
	})

	return &testAPI{mux: mux, store: store, upstream: upstream, upstreamHits: &hits}
}

func (a *testAPI) executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.mux.ServeHTTP(rr, req)
	return rr
}

// decodeSuccess unwraps the response envelope into out and returns the
// pagination metadata, if any.
func decodeSuccess(t *testing.T, rr *httptest.ResponseRecorder, out any) *response.Meta {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Meta    *response.Meta  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.True(t, env.Success)

	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env.Meta
}

func (a *testAPI) storeValue(t *testing.T, typ, value string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"type": typ, "value": value})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")

	rr := a.executeRequest(req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var data struct {
		Key string `json:"key"`
	}
	decodeSuccess(t, rr, &data)
	require.True(t, uid.IsValid(data.Key))
	return data.Key
}

func TestStatusEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Checks  struct {
			Store string `json:"store"`
		} `json:"checks"`
	}
	decodeSuccess(t, rr, &data)
	assert.Equal(t, "alx-cache-api", data.Service)
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, "ok", data.Checks.Store)
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	decodeSuccess(t, rr, &data)
	assert.Equal(t, "healthy", data.Status)
	assert.Equal(t, "test", data.Version)
}

func TestReadyEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Ready  bool `json:"ready"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	decodeSuccess(t, rr, &data)
	assert.True(t, data.Ready)
	assert.Len(t, data.Checks, 2)
}

// brokenStore fails every ping while delegating everything else.
type brokenStore struct {
	kv.Store
}

func (s *brokenStore) Ping(ctx context.Context) error {
	return errors.New("store unreachable")
}

func TestReadyEndpointStoreDown(t *testing.T) {
	store := &brokenStore{Store: kv.NewMemoryStore()}
	t.Cleanup(func() { _ = store.Close() })

	mux := router.New(router.Config{Handler: handler.New(store, "alx-cache-api", "test")})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var data struct {
		Ready bool `json:"ready"`
	}
	decodeSuccess(t, rr, &data)
	assert.False(t, data.Ready)
}

func TestStoreAndGetString(t *testing.T) {
	api := newTestAPI(t, nil)
	key := api.storeValue(t, "string", "hello")

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/cache/"+key, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Key   string `json:"key"`
		As    string `json:"as"`
		Value string `json:"value"`
	}
	decodeSuccess(t, rr, &data)
	assert.Equal(t, key, data.Key)
	assert.Equal(t, "text", data.As)
	assert.Equal(t, "hello", data.Value)
}

func TestStoreAndGetTyped(t *testing.T) {
	api := newTestAPI(t, nil)
	rawB64 := base64.StdEncoding.EncodeToString([]byte("raw bytes"))

	cases := []struct {
		desc  string
		typ   string
		value string
		as    string
		want  string
	}{
		{desc: "int round trip", typ: "int", value: "42", as: "int", want: "42"},
		{desc: "float round trip", typ: "float", value: "2.5", as: "float", want: "2.5"},
		{desc: "bytes round trip", typ: "bytes", value: rawB64, as: "bytes", want: rawB64},
		{desc: "int read back as text", typ: "int", value: "42", as: "text", want: "42"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			key := api.storeValue(t, tc.typ, tc.value)

			rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/cache/"+key+"?as="+tc.as, nil))
			require.Equal(t, http.StatusOK, rr.Code)

			var data struct {
				Value json.RawMessage `json:"value"`
			}
			decodeSuccess(t, rr, &data)
			assert.Equal(t, tc.want, strings.Trim(string(data.Value), `"`))
		})
	}
}

func TestStoreValueErrors(t *testing.T) {
	api := newTestAPI(t, nil)

	cases := []struct {
		desc string
		body string
	}{
		{desc: "invalid json", body: "{"},
		{desc: "unknown type", body: `{"type":"blob","value":"x"}`},
		{desc: "bad base64", body: `{"type":"bytes","value":"!!!"}`},
		{desc: "bad integer", body: `{"type":"int","value":"forty-two"}`},
		{desc: "bad float", body: `{"type":"float","value":"fast"}`},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cache", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			rr := api.executeRequest(req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestGetValueErrors(t *testing.T) {
	api := newTestAPI(t, nil)
	textKey := api.storeValue(t, "string", "definitely not a number")

	cases := []struct {
		desc string
		path string
		code int
	}{
		{desc: "malformed key", path: "/api/v1/cache/not-a-uuid", code: http.StatusBadRequest},
		{desc: "unknown key", path: "/api/v1/cache/" + uid.New(), code: http.StatusNotFound},
		{desc: "text read as int", path: "/api/v1/cache/" + textKey + "?as=int", code: http.StatusBadRequest},
		{desc: "unsupported as", path: "/api/v1/cache/" + textKey + "?as=xml", code: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			rr := api.executeRequest(httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.code, rr.Code)
		})
	}
}

func TestReplayEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)
	api.storeValue(t, "string", "first")
	api.storeValue(t, "int", "7")

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/cache/replay/"+cache.MethodStore, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")

	report := rr.Body.String()
	assert.Contains(t, report, cache.MethodStore+" was called 2 times:")
	assert.Contains(t, report, `cache.Client.Store("first")`)
	assert.Contains(t, report, "cache.Client.Store(7)")
}

func TestPageEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	target := api.upstream.URL + "/welcome"
	q := url.Values{"url": {target}}.Encode()

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/page?"+q, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello from upstream", rr.Body.String())

	// Second request is served from cache.
	rr = api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/page?"+q, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello from upstream", rr.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt32(api.upstreamHits))

	rr = api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/page/count?"+q, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		URL   string `json:"url"`
		Count int64  `json:"count"`
	}
	decodeSuccess(t, rr, &data)
	assert.Equal(t, target, data.URL)
	assert.EqualValues(t, 2, data.Count)
}

func TestPageMissingURL(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/api/v1/page", "/api/v1/page/count"} {
		rr := api.executeRequest(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "path %s", path)
	}
}

func TestPageUpstreamDown(t *testing.T) {
	api := newTestAPI(t, nil)

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	q := url.Values{"url": {dead.URL}}.Encode()
	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/page?"+q, nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestAdminStats(t *testing.T) {
	api := newTestAPI(t, nil)

	q := url.Values{"url": {api.upstream.URL}}.Encode()
	api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/page?"+q, nil))

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		StoreType string `json:"store_type"`
		WebCache  struct {
			Hits   int64  `json:"hits"`
			Misses int64  `json:"misses"`
			Status string `json:"status"`
		} `json:"webcache"`
		FetchJournal struct {
			Status string `json:"status"`
		} `json:"fetch_journal"`
	}
	decodeSuccess(t, rr, &data)
	assert.Equal(t, "memory", data.StoreType)
	assert.Equal(t, "connected", data.WebCache.Status)
	assert.EqualValues(t, 1, data.WebCache.Misses)
	assert.Equal(t, "not_configured", data.FetchJournal.Status)
}

func TestAdminFetchesWithoutJournal(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/admin/fetches", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAdminFetchesWithJournal(t *testing.T) {
	repo, err := repository.NewSQLiteFetchLogRepository(filepath.Join(t.TempDir(), "fetchlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	api := newTestAPI(t, repo)
	target := api.upstream.URL + "/journal"

	q := url.Values{"url": {target}}.Encode()
	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/page?"+q, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/admin/fetches", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var records []model.FetchRecord
	meta := decodeSuccess(t, rr, &records)
	require.NotNil(t, meta)
	assert.EqualValues(t, 1, meta.Total)
	require.Len(t, records, 1)
	assert.Equal(t, target, records[0].URL)
	assert.Equal(t, http.StatusOK, records[0].Status)
}

func TestRequestIDHeader(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.executeRequest(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")
	rr = api.executeRequest(req)
	assert.Equal(t, "test-request-id", rr.Header().Get("X-Request-ID"))
}
